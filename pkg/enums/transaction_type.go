package enums

import "fmt"

// TransactionType is the canonical code for a stock movement. The sheet may
// carry either these codes or the Thai display labels; both parse to the
// canonical value, and the label is produced only for presentation.
type TransactionType string

const (
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
	TransactionTypeReceive  TransactionType = "RECEIVE"
	TransactionTypeReturn   TransactionType = "RETURN"
	TransactionTypeCreate   TransactionType = "CREATE"
	TransactionTypeEdit     TransactionType = "EDIT"
	TransactionTypeDelete   TransactionType = "DELETE"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeWithdraw,
	TransactionTypeReceive,
	TransactionTypeReturn,
	TransactionTypeCreate,
	TransactionTypeEdit,
	TransactionTypeDelete,
}

var transactionTypeLabels = map[TransactionType]string{
	TransactionTypeWithdraw: "เบิก",
	TransactionTypeReceive:  "รับเข้า",
	TransactionTypeReturn:   "คืน",
	TransactionTypeCreate:   "สร้าง",
	TransactionTypeEdit:     "แก้ไข",
	TransactionTypeDelete:   "ลบ",
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionType.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Label returns the Thai display label. Presentation only; business
// comparisons always use the canonical code.
func (t TransactionType) Label() string {
	if label, ok := transactionTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// ParseTransactionType converts raw input into a TransactionType. It accepts
// the canonical English code or the Thai display label.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	for candidate, label := range transactionTypeLabels {
		if label == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
