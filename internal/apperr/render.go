package apperr

import (
	"errors"
	"fmt"
)

// Render turns err into the message shown to end users.
func Render(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return "Une erreur inattendue est survenue."
	}
	switch e.Kind {
	case KindValidation:
		return "Les données fournies sont invalides."
	case KindPermissionDenied:
		return "Action non autorisée : " + e.Message
	case KindNotFound:
		return fmt.Sprintf("Introuvable : %s", e.Message)
	case KindStoreUnavailable:
		return "Service indisponible : " + e.Message
	case KindStoreWriteFailed:
		return "L'enregistrement a échoué : " + e.Error()
	default:
		return "Une erreur inattendue est survenue."
	}
}
