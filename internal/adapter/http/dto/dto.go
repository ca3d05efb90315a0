package dto

// OrderURI binds the public order id path parameter.
type OrderURI struct {
	PublicOrderID string `uri:"publicOrderId" binding:"required,public_order_id"`
}

// DownloadURI binds the download slug path parameter.
type DownloadURI struct {
	Code string `uri:"code" binding:"required,download_slug"`
}

// OrderLookupQuery is the query for finding orders by customer email.
type OrderLookupQuery struct {
	Email string `form:"email" binding:"required,email,max=254"`
}

// MessageSentResponse is returned when an email was handed to the provider.
type MessageSentResponse struct {
	MessageID string `json:"message_id"`
}

// OrderLookupResponse lists the public ids of matching orders.
type OrderLookupResponse struct {
	PublicOrderIDs []string `json:"public_order_ids"`
}
