package schemas

import (
	"context"
	"fmt"

	"github.com/noor-ul-masajid/console/internal/core"
	"github.com/noor-ul-masajid/console/internal/roster"
)

// ContactsKey is the registry key of the messaging contact import.
const ContactsKey = "contacts"

func registerContacts(r *roster.Roster) {
	core.Register(core.SchemaDefinition{
		Info: core.SchemaInfo{
			Key:   ContactsKey,
			Group: "Messaging",
			Title: "Import Contacts",
			Columns: []core.TemplateColumn{
				{Header: "Name", Key: "Name", Required: true},
				{Header: "Phone", Key: "Phone", Required: true, Kind: core.KindPhone},
				{Header: "Group", Key: "Group"},
			},
		},
		Bind: func(map[string]string) (core.AcceptFunc, error) {
			return acceptContacts(r), nil
		},
	})
}

// acceptContacts adds or replaces contacts by phone. The batch is checked
// before anything is written so a bad phone leaves the list untouched.
func acceptContacts(r *roster.Roster) core.AcceptFunc {
	return func(_ context.Context, records []core.Record) (int, error) {
		contacts := make([]roster.Contact, len(records))
		for i, rec := range records {
			contacts[i] = roster.Contact{
				Name:  text(rec["Name"]),
				Phone: phone(rec["Phone"]),
				Group: text(rec["Group"]),
			}
			if contacts[i].Phone == "" {
				return 0, fmt.Errorf("record %d: phone %q has no digits", i+1, text(rec["Phone"]))
			}
		}

		return r.UpsertContacts(contacts)
	}
}
