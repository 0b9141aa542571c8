package output

// SchemaVersion is the version of the NDJSON output schema. Consumers compare
// it before reading fields added in later versions.
const SchemaVersion = 1
