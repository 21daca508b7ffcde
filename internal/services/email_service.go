package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"digi3/internal/models"
)

type EmailService interface {
	SendWelcomeEmail(u *models.User) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	return &emailService{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
	}
}

var roleLabels = map[models.Role]string{
	models.RoleAdmin:          "administrateur",
	models.RoleResponsable:    "responsable",
	models.RoleProjectManager: "chef de projet",
	models.RoleLeadDeveloper:  "développeur principal",
	models.RoleDeveloper:      "développeur",
	models.RoleUser:           "utilisateur",
}

func roleLabel(r models.Role) string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// welcomeBody renders the HTML sent to a newly created account.
func welcomeBody(u *models.User) string {
	name := u.FullName()
	if name == "" {
		name = u.Email
	}
	return fmt.Sprintf(`<h2>Bienvenue %s !</h2>
<p>Un compte <strong>%s</strong> vient de vous être ouvert sur Digi3.</p>
<p>Identifiant : %s</p>`,
		html.EscapeString(name), html.EscapeString(roleLabel(u.Role)), html.EscapeString(u.Email))
}

func (s *emailService) SendWelcomeEmail(u *models.User) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetAddressHeader("To", u.Email, u.FullName())
	m.SetHeader("Subject", "Votre compte Digi3")
	m.SetBody("text/html", welcomeBody(u))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send welcome email to %s: %w", u.Email, err)
	}
	return nil
}
