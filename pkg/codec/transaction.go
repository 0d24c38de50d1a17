package codec

import "strings"

// FieldCount is the number of fields every transaction carries.
const FieldCount = 5

// Column names used by the tabular representation, in canonical order.
const (
	ColumnPlayerID = "playerID"
	ColumnDate     = "date"
	ColumnType     = "type"
	ColumnFromTeam = "fromTeam"
	ColumnToTeam   = "toTeam"
)

// Columns lists the tabular header in canonical order.
var Columns = []string{ColumnPlayerID, ColumnDate, ColumnType, ColumnFromTeam, ColumnToTeam}

// Transaction is one row of player transaction history
type Transaction struct {
	PlayerID string `json:"playerID"`
	Date     string `json:"date"` // ISO YYYY-MM-DD, empty when unparseable
	Type     string `json:"type"`
	FromTeam string `json:"fromTeam"`
	ToTeam   string `json:"toTeam"`
}

// Fields returns the record values in canonical column order.
func (t Transaction) Fields() []string {
	return []string{t.PlayerID, t.Date, t.Type, t.FromTeam, t.ToTeam}
}

// String renders the transaction tab-joined, as it would appear in a frame
// before date transcoding.
func (t Transaction) String() string {
	return strings.Join(t.Fields(), "\t")
}
