package entity

// Instance é o canal de WhatsApp conectado de um cliente (UAZAPI).
type Instance struct {
	InstanceKey  string `json:"instance_key"`
	ClientID     string `json:"client_id"`
	Status       string `json:"status"` // disconnected, connecting, connected
	QRCodeBase64 string `json:"qr_code_base64,omitempty"`
}

const (
	InstanceConnected    = "connected"
	InstanceConnecting   = "connecting"
	InstanceDisconnected = "disconnected"
)

func (i *Instance) IsConnected() bool {
	return i.Status == InstanceConnected
}
