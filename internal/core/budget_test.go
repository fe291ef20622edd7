package core

import "testing"

func TestDocumentNormalize(t *testing.T) {
	doc := Document{
		IncomeRows: []IncomeRow{{Source: "Job", Amount: 100}},
		SpendingRows: []SpendingRow{
			{Category: "Rent", Details: []DetailRow{{Where: "Landlord", Amount: 5}}},
		},
	}
	doc.Normalize()

	if doc.IncomeRows[0].ID == "" {
		t.Error("income row id not assigned")
	}
	if doc.SpendingRows[0].ID == "" {
		t.Error("spending row id not assigned")
	}
	if doc.SpendingRows[0].Type != Simple {
		t.Errorf("blank type = %q, want simple", doc.SpendingRows[0].Type)
	}
	if doc.SpendingRows[0].Details[0].ID == "" {
		t.Error("detail row id not assigned")
	}

	empty := Document{}
	empty.Normalize()
	if empty.IncomeRows == nil || empty.SpendingRows == nil {
		t.Error("nil slices should normalize to empty")
	}
}

func TestDocumentClone(t *testing.T) {
	doc := Document{
		Currency:       "$",
		SavingsPercent: 0.1,
		SosPercent:     0.05,
		IncomeRows:     []IncomeRow{{Source: "Job", Amount: 2000}},
		SpendingRows: []SpendingRow{
			{Category: "Food", Planned: 300, Actual: 80, Type: Advanced,
				Details: []DetailRow{{Date: "2025-01-03", Where: "Market", Amount: 80}}},
		},
	}
	doc.Normalize()
	copy := doc.Clone()

	if copy.IncomeRows[0].ID == doc.IncomeRows[0].ID {
		t.Error("clone must assign fresh income row ids")
	}
	if copy.SpendingRows[0].Details[0].ID == doc.SpendingRows[0].Details[0].ID {
		t.Error("clone must assign fresh detail row ids")
	}
	if copy.SpendingRows[0].Details[0].Amount != 80 {
		t.Error("clone lost detail amount")
	}

	// Mutating the clone must not touch the original.
	copy.SpendingRows[0].Details[0].Amount = 999
	if doc.SpendingRows[0].Details[0].Amount != 80 {
		t.Error("clone shares detail storage with original")
	}
}

func TestDocumentValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr error
	}{
		{"valid", Document{SavingsPercent: 0.1, SosPercent: 0.05,
			SpendingRows: []SpendingRow{{Type: Simple}}}, nil},
		{"bad spend type", Document{SpendingRows: []SpendingRow{{Type: "weird"}}}, ErrInvalidSpendType},
		{"savings percent above 1", Document{SavingsPercent: 1.5}, ErrInvalidPercent},
		{"negative sos percent", Document{SosPercent: -0.1}, ErrInvalidPercent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.doc.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName("Groceries"); err != nil {
		t.Errorf("ValidateName(Groceries) = %v", err)
	}
	if err := ValidateName("   "); err != ErrBlankName {
		t.Errorf("ValidateName(blank) = %v, want ErrBlankName", err)
	}
}
