package models

// AccountView is everything the client needs to render an account after any operation.
type AccountView struct {
	User          User           `json:"user"`
	Transactions  []Transaction  `json:"transactions"`
	Loans         []Loan         `json:"loans"`
	Notifications []Notification `json:"notifications"`
	Beneficiaries []Beneficiary  `json:"beneficiaries"`
}
