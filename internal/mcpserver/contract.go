package mcpserver

// NoteRecordContract describes the JSON record stored under each note key,
// for LLM consumers that read or import records directly.
const NoteRecordContract = `# Laguz Note Record Format

Every note lives in the key-value store under a key of the form
` + "`note-<digits>`" + `, where the digits are the creation timestamp in
milliseconds. Keys with any other shape are invisible to Laguz.

## Record

` + "```" + `json
{
  "id": "note-1700000000000",
  "content": "free-form note text",
  "date": 1700000000000,
  "dirty": true,
  "removed": false
}
` + "```" + `

## Rules

1. ` + "`id`" + ` is required, must equal the store key, and is immutable once
   persisted.
2. ` + "`date`" + ` is the last-modification time in unix milliseconds.
3. ` + "`dirty`" + ` means the record carries changes not yet confirmed
   synchronized.
4. ` + "`removed`" + ` tombstones the note: it stays in the store but is
   excluded from the active view. Records are never physically deleted
   except by an explicit clear of persistence.
5. A record that fails to parse is skipped on reload; it does not break the
   rest of the collection.
`
