package model

type CreatePatientRequest struct {
	Name    string `json:"name" binding:"required"`
	Age     int    `json:"age" binding:"required,gt=0"`
	Gender  string `json:"gender" binding:"required,oneof=male female other"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
}

type CreateOrderRequest struct {
	PatientID string   `json:"patient_id" binding:"required"`
	TestCodes []string `json:"test_codes" binding:"required,min=1"`
}

type TestResultRequest struct {
	TestID         string `json:"test_id" binding:"required"`
	Value          string `json:"value" binding:"required"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"reference_range"`
	IsAbnormal     bool   `json:"is_abnormal"`
}

// UpdateOrderStatusRequest carries the target status plus whatever payload the
// transition guards require. Unused fields are ignored by the store.
type UpdateOrderStatusRequest struct {
	Status           string              `json:"status" binding:"required,orderstatus"`
	SampleReceivedBy string              `json:"sample_received_by"`
	RejectionReason  string              `json:"rejection_reason"`
	VerifiedBy       string              `json:"verified_by"`
	Results          []TestResultRequest `json:"results"`
	ReportContent    string              `json:"report_content"`
}

// UpdateOrderRequest is a partial update of non-status fields.
type UpdateOrderRequest struct {
	Results       []TestResultRequest `json:"results"`
	ReportContent *string             `json:"report_content"`
}
