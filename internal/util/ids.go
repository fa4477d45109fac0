package util

import "github.com/google/uuid"

// NewConnID genera un identificador para correlacionar en los logs todo lo
// que ocurre en una conexión. No viaja en la respuesta.
func NewConnID() string {
	return uuid.NewString()
}
