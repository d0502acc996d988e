package model

// Operation là thao tác mutate cần validate
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

const (
	FieldISBN        = "isbn"
	FieldName        = "name"
	FieldYear        = "year"
	FieldAuthor      = "author"
	FieldDescription = "description"
)

// ISBNCheck là predicate cần tra cứu storage
type ISBNCheck int

const (
	CheckNone   ISBNCheck = iota
	CheckUnique           // isbn chưa tồn tại
	CheckExists           // isbn đã tồn tại
)

// FieldRule là một dòng trong rule table.
// Min/Max are rune counts, 0 means unbounded. Optional fields are only checked when non-empty.
type FieldRule struct {
	Field    string
	Min      int
	Max      int
	Numeric  bool
	Optional bool
	Check    ISBNCheck
}

// RuleTable: rules theo thứ tự field cho từng operation
var RuleTable = map[Operation][]FieldRule{
	OpCreate: {
		{Field: FieldISBN, Min: 5, Numeric: true, Check: CheckUnique},
		{Field: FieldName, Min: 2},
		{Field: FieldYear, Min: 4, Max: 4, Numeric: true},
		{Field: FieldAuthor, Min: 2},
		{Field: FieldDescription, Min: 10},
	},
	OpUpdate: {
		{Field: FieldISBN, Min: 5, Numeric: true, Check: CheckExists},
		{Field: FieldName, Min: 2},
		{Field: FieldYear, Min: 4, Max: 4, Numeric: true, Optional: true},
	},
	OpDelete: {
		{Field: FieldISBN, Min: 5, Numeric: true, Check: CheckExists},
	},
}
