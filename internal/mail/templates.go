package mail

import "fmt"

type resetTemplate struct {
	subject  string
	textBody string
	htmlBody string
}

func (t resetTemplate) text(firstName, link string) string {
	return fmt.Sprintf(t.textBody, firstName, link)
}

func (t resetTemplate) html(firstName, link string) string {
	return fmt.Sprintf(t.htmlBody, firstName, link)
}

// Supported languages for the reset email. Anything else falls back to "en".
var resetTemplates = map[string]resetTemplate{
	"en": {
		subject: "Password Reset - Course Portal",
		textBody: "Hello %s,\n\nYou requested a password reset for your Course Portal account.\n\n" +
			"Click the link below to reset your password:\n%s\n\n" +
			"This link will expire in 1 hour.\n\nIf you didn't request this, please ignore this email.\n\n" +
			"Best regards,\nCourse Portal Team",
		htmlBody: `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Password Reset Request</h2>
  <p>Hello %s,</p>
  <p>You requested a password reset for your Course Portal account.</p>
  <p><a href="%s">Reset Password</a></p>
  <p>This link will expire in 1 hour.</p>
  <p>If you didn't request this, please ignore this email.</p>
</div>`,
	},
	"es": {
		subject: "Restablecimiento de Contraseña - Course Portal",
		textBody: "Hola %s,\n\nSolicitaste un restablecimiento de contraseña para tu cuenta de Course Portal.\n\n" +
			"Haz clic en el enlace de abajo para restablecer tu contraseña:\n%s\n\n" +
			"Este enlace expirará en 1 hora.\n\nSi no solicitaste esto, por favor ignora este correo.\n\n" +
			"Saludos cordiales,\nEquipo de Course Portal",
		htmlBody: `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Solicitud de Restablecimiento de Contraseña</h2>
  <p>Hola %s,</p>
  <p>Solicitaste un restablecimiento de contraseña para tu cuenta de Course Portal.</p>
  <p><a href="%s">Restablecer Contraseña</a></p>
  <p>Este enlace expirará en 1 hora.</p>
  <p>Si no solicitaste esto, por favor ignora este correo.</p>
</div>`,
	},
	"fr": {
		subject: "Réinitialisation de mot de passe - Course Portal",
		textBody: "Bonjour %s,\n\nVous avez demandé une réinitialisation de mot de passe pour votre compte Course Portal.\n\n" +
			"Cliquez sur le lien ci-dessous pour réinitialiser votre mot de passe :\n%s\n\n" +
			"Ce lien expirera dans 1 heure.\n\nSi vous n'avez pas demandé cela, veuillez ignorer cet e-mail.\n\n" +
			"Cordialement,\nL'équipe Course Portal",
		htmlBody: `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Demande de réinitialisation de mot de passe</h2>
  <p>Bonjour %s,</p>
  <p>Vous avez demandé une réinitialisation de mot de passe pour votre compte Course Portal.</p>
  <p><a href="%s">Réinitialiser le mot de passe</a></p>
  <p>Ce lien expirera dans 1 heure.</p>
  <p>Si vous n'avez pas demandé cela, veuillez ignorer cet e-mail.</p>
</div>`,
	},
}

func templateFor(language string) resetTemplate {
	if t, ok := resetTemplates[language]; ok {
		return t
	}
	return resetTemplates["en"]
}
