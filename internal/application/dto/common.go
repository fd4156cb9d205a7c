package dto

// ErrorResponse cuerpo de error HTTP. Message siempre presente; Code para clientes que distinguen casos.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse respuesta simple de éxito.
type MessageResponse struct {
	Message string `json:"message"`
}

// IDsRequest cuerpo de operaciones en masa.
type IDsRequest struct {
	IDs []int64 `json:"ids"`
}
