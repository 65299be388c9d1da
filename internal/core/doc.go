// Package core provides the spreadsheet import pipeline of the console.
//
// The package holds the import logic independent of any transport layer.
// Web handlers, tools and tests use it without modification.
//
// # Architecture
//
// The pipeline runs leaf first:
//
//   - Parser: [sheet.Parser] decodes a workbook or CSV into headers and rows.
//   - Mapper: [AutoMap] binds headers to template fields; [Session.SetMapping]
//     overrides a binding.
//   - Normalizer: [NormalizeRow] checks required fields and coerces cells.
//   - Coordinator: [Session] drives one import through its states and hands
//     accepted records to the caller, all or nothing.
//
// # Schema Registry
//
// Screens that accept imports register a [SchemaDefinition] at startup:
//
//	core.Register(core.SchemaDefinition{
//	    Info: core.SchemaInfo{
//	        Key:   "attendance",
//	        Title: "Import Attendance",
//	        Columns: []core.TemplateColumn{
//	            {Header: "Roll Number", Key: "Roll Number", Required: true},
//	            {Header: "Status", Key: "Status", Required: true},
//	        },
//	    },
//	    Bind: bindAttendance,
//	})
//
// Bind receives per-session parameters and returns the [AcceptFunc] that
// stores the accepted records.
//
// # Sessions
//
// [Service] keeps open sessions keyed by id, bounds concurrent parsing with
// an [ImportLimiter], expires idle sessions and records every attempt in the
// import history.
//
// # Error Handling
//
// Validation failures are never returned as errors; they are listed in
// [ImportResult.Errors]. Returned errors wrap the package sentinels and are
// mapped to user messages with [MapError].
package core
