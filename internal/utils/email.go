package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/wneessen/go-mail"

	"lumira_back_end/internal/config"
	"lumira_back_end/internal/models"
	"lumira_back_end/internal/pricing"
)

// Mailer : envoi SMTP des emails de commande. Implémente checkout.Mailer.
type Mailer struct {
	From string
	Ops  string
}

func NewMailer() *Mailer {
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@lumira-atelier.com"
	}
	return &Mailer{From: from, Ops: config.OpsEmail()}
}

func (m *Mailer) newClient() (*mail.Client, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "ssl0.ovh.net"
	}
	return mail.NewClient(host,
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
}

// SendOrderConfirmation envoie le récapitulatif au client, avec une
// copie aux opérations dont le reply-to pointe vers le client pour
// répondre en un clic.
func (m *Mailer) SendOrderConfirmation(order *models.Order, customerEmail string) error {
	subject := fmt.Sprintf("Confirmation de votre commande #%s", shortRef(order.ID))
	html := OrderConfirmationHTML(order)

	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return err
	}
	if err := msg.To(customerEmail); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	ops := mail.NewMsg()
	if err := ops.From(m.From); err != nil {
		return err
	}
	if err := ops.To(m.Ops); err != nil {
		return err
	}
	if err := ops.ReplyTo(customerEmail); err != nil {
		return err
	}
	ops.Subject(fmt.Sprintf("Nouvelle commande #%s (%.2f€)", shortRef(order.ID), order.Total))
	ops.SetBodyString(mail.TypeTextHTML, html)

	client, err := m.newClient()
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail de confirmation à", customerEmail)
	return client.DialAndSend(msg, ops)
}

// SendOrderStatus prévient le client d'un changement de statut d'expédition
func (m *Mailer) SendOrderStatus(order *models.Order, customerEmail, newStatus string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return err
	}
	if err := msg.To(customerEmail); err != nil {
		return err
	}
	msg.Subject(fmt.Sprintf("Votre commande #%s : %s", shortRef(order.ID), statusLabel(newStatus)))
	msg.SetBodyString(mail.TypeTextHTML, OrderStatusHTML(order, newStatus))

	client, err := m.newClient()
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail de statut à", customerEmail)
	return client.DialAndSend(msg)
}

// OrderConfirmationHTML génère le HTML de confirmation de commande
func OrderConfirmationHTML(order *models.Order) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%.2f€</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%.2f€</td>
			</tr>`, item.Name, item.Quantity, item.Price, item.Price*float64(item.Quantity))
	}

	discountHTML := ""
	if order.Discount > 0 {
		discountHTML = fmt.Sprintf(`<p>Réduction appliquée : −%.2f€ (%s)</p>`, order.Discount, order.CouponCode)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande</h2>
		<p>Bonjour %s,</p>
		<p>Votre commande a été confirmée avec succès.</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Article</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right;">Sous-total :</td>
					<td style="padding: 10px;">%.2f€</td>
				</tr>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right;">Livraison :</td>
					<td style="padding: 10px;">%.2f€</td>
				</tr>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total :</td>
					<td style="padding: 10px; font-weight: bold;">%.2f€</td>
				</tr>
			</tfoot>
		</table>
		%s
		%s

		<h3>Adresse de livraison</h3>
		<p>%s<br>%s<br>%s %s<br>%s</p>

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Lumira</strong>
		</p>
	</div>
</body>
</html>`,
		order.ShippingAddress.FullName, itemsHTML,
		order.Subtotal, order.Shipping, order.Total,
		discountHTML, balanceSection(order),
		order.ShippingAddress.FullName, order.ShippingAddress.Street,
		order.ShippingAddress.PostalCode, order.ShippingAddress.City,
		order.ShippingAddress.Country)
}

// balanceSection : pour une commande avec acompte, rappel du solde dû à
// la livraison avec un QR SEPA prêt à scanner
func balanceSection(order *models.Order) string {
	if order.PaymentMethod != models.MethodDeposit {
		return ""
	}

	advance := pricing.Advance(order.Total, config.DepositRate())
	balance := order.Total - advance

	qrHTML := ""
	iban := os.Getenv("COMPANY_IBAN")
	bic := os.Getenv("COMPANY_BIC")
	if iban != "" && bic != "" {
		ref := fmt.Sprintf("CMD-%s", shortRef(order.ID))
		if qr, err := GenerateBalanceQR(iban, bic, "Lumira Atelier", ref, balance); err == nil {
			qrHTML = fmt.Sprintf(`<p><img src="%s" alt="QR de paiement du solde" width="128" height="128"></p>`, qr)
		} else {
			log.Printf("⚠️ Erreur génération QR solde pour %s: %v", order.ID, err)
		}
	}

	return fmt.Sprintf(`
		<div style="background-color: #fff8e6; padding: 15px; border-radius: 8px; margin: 20px 0;">
			<h3 style="margin-top: 0;">Acompte versé</h3>
			<p>Acompte encaissé : <strong>%.2f€</strong><br>
			Solde à régler à la livraison : <strong>%.2f€</strong></p>
			%s
		</div>`, advance, balance, qrHTML)
}

// OrderStatusHTML génère le HTML de mise à jour de statut
func OrderStatusHTML(order *models.Order, newStatus string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Mise à jour de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Votre commande #%s</h2>
		<p>Bonjour %s,</p>
		<p>Le statut de votre commande est maintenant : <strong>%s</strong>.</p>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Lumira</strong>
		</p>
	</div>
</body>
</html>`, shortRef(order.ID), order.ShippingAddress.FullName, statusLabel(newStatus))
}

func statusLabel(status string) string {
	switch status {
	case models.FulfillmentProcessing:
		return "en préparation"
	case models.FulfillmentShipped:
		return "expédiée"
	case models.FulfillmentDelivered:
		return "livrée"
	case models.FulfillmentCancelled:
		return "annulée"
	default:
		return status
	}
}

func shortRef(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
