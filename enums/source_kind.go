package enums

type SourceKind string

const (
	SourceKindDirect    SourceKind = "direct"
	SourceKindProtected SourceKind = "protected"
)
