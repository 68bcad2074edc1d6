package reservation

type CreateReservationReq struct {
	BagID     string `json:"bag_id" validate:"required,uuid"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type CancelReq struct {
	Reason string `json:"reason" validate:"max=500"`
}

type UpdateStatusReq struct {
	Status string `json:"status" validate:"required,resstatus"`
}
