package enums

import "fmt"

// CommandAction tags a mutation command sent to the write endpoint.
type CommandAction string

const (
	CommandActionAddProduct    CommandAction = "addProduct"
	CommandActionUpdateProduct CommandAction = "updateProduct"
	CommandActionDeleteProduct CommandAction = "deleteProduct"
	CommandActionWithdraw      CommandAction = "withdraw"
	CommandActionReceive       CommandAction = "receive"
	CommandActionReturn        CommandAction = "return"
)

var validCommandActions = []CommandAction{
	CommandActionAddProduct,
	CommandActionUpdateProduct,
	CommandActionDeleteProduct,
	CommandActionWithdraw,
	CommandActionReceive,
	CommandActionReturn,
}

// String implements fmt.Stringer.
func (a CommandAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known CommandAction.
func (a CommandAction) IsValid() bool {
	for _, candidate := range validCommandActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseCommandAction converts raw input into a CommandAction.
func ParseCommandAction(value string) (CommandAction, error) {
	for _, candidate := range validCommandActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid command action %q", value)
}
