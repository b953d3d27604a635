package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContactInput defines the JSON for the public contact form.
type ContactInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// Contact is the handler for POST /api/contact.
// The form is validated and forwarded by email; nothing is persisted.
func (h *Handlers) Contact(c *gin.Context) {
	var input ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subject := input.Subject
	if subject == "" {
		subject = "Nouveau message de contact"
	}

	body := fmt.Sprintf("De: %s <%s>\n\n%s", input.Name, input.Email, input.Message)
	if err := h.Mailer.Send(h.Cfg.ContactEmail, subject, body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message envoyé avec succès"})
}
