package mail

type RecoveryFailedData struct {
	LeadName    string
	LeadEmail   string
	ProductName string
}

type AlertSender struct {
	Host     string
	Port     int
	User     string
	Password string
	To       string
}
