package mailer

import (
	"bookstore/src/lib"
	"bookstore/src/models"
	"fmt"
)

func PaymentReceipt(tx *models.FlutterwaveTransaction) *lib.SendMailInput {
	return &lib.SendMailInput{
		To:      []string{tx.Customer.Email},
		Subject: fmt.Sprintf("Payment received: %s", tx.TxRef),
		Body: fmt.Sprintf(
			"Hello %s,\n\nWe received your payment of %s %s (reference %s).\nStatus: %s\n\nThank you for shopping with us.",
			tx.Customer.Name, tx.Currency, tx.Amount.StringFixed(2), tx.TxRef, tx.Status,
		),
	}
}

func OrderStatusChanged(order *models.Order) *lib.SendMailInput {
	return &lib.SendMailInput{
		To:      []string{order.ShippingEmail},
		Subject: fmt.Sprintf("Order #%d is %s", order.ID, order.Status),
		Body: fmt.Sprintf(
			"Hello %s,\n\nYour order #%d (total %s) is now %s.\n\nThank you for shopping with us.",
			order.ShippingName, order.ID, order.TotalPrice.StringFixed(2), order.Status,
		),
	}
}

func LoginCode(email, code string) *lib.SendMailInput {
	return &lib.SendMailInput{
		To:      []string{email},
		Subject: "Your login code",
		Body:    fmt.Sprintf("Your login code is %s. It expires in 10 minutes.", code),
	}
}
