package uazapi

type sendTextRequest struct {
	InstanceName string `json:"instanceName"`
	Number       string `json:"number"`
	Text         string `json:"text"`
}

type instanceRequest struct {
	InstanceName string `json:"instanceName"`
}

type connectResponse struct {
	Base64 string `json:"base64"`
}

type statusResponse struct {
	Instance struct {
		State string `json:"state"` // "open" = conectado
	} `json:"instance"`
}
