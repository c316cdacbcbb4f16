package domain

type MailType string

const (
	MailSignupOTP        MailType = "signup_otp"
	MailHRAccountCreated MailType = "hr_account_created"
)

type MailMessage struct {
	Type MailType `json:"type"`
	To   string   `json:"to"`
	Data any      `json:"data"`
}

type SignupOTPMailData struct {
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type HRAccountCreatedMailData struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Scope       Scope  `json:"scope"`
	Designation string `json:"designation"`
	LoginURL    string `json:"loginUrl"`
}
