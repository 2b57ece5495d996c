package mailer

import "strings"

// Render substitutes {{token}} placeholders in tpl with values from data.
// Tokens without a matching key are left in place.
func Render(tpl string, data map[string]string) string {
	for key, val := range data {
		tpl = strings.ReplaceAll(tpl, "{{"+key+"}}", val)
	}
	return tpl
}

// Built-in templates. Stores can override subject lines via settings later;
// bodies are intentionally plain text.
const (
	orderConfirmationSubject = "Order {{orderNumber}} confirmed"
	orderConfirmationBody    = "Hi {{name}},\n\n" +
		"Thanks for your order {{orderNumber}}. We charged {{grandTotal}} and " +
		"your items are being prepared.\n\n{{storeName}}\n"

	welcomeSubject = "Welcome to {{storeName}}"
	welcomeBody    = "Hi {{name}},\n\n" +
		"Your account is ready. You can sign in with this email address.\n\n" +
		"{{storeName}}\n"

	verificationSubject = "Verify your email"
	verificationBody    = "Hi {{name}},\n\n" +
		"Use this code to verify your email address: {{code}}\n\n" +
		"{{storeName}}\n"
)
