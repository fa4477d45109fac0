package http1

import "strings"

// Field es un par nombre/valor tal como llegó en la petición.
type Field struct {
	Name  string
	Value string
}

// Header guarda los campos en orden inverso de aparición: cada campo nuevo
// se antepone. Así Lookup devuelve la última declaración de un nombre repetido.
type Header struct {
	fields []Field
}

// prepend sólo lo usa el parser; fuera del paquete el Header es de lectura.
func (h *Header) prepend(name, value string) {
	h.fields = append(h.fields, Field{})
	copy(h.fields[1:], h.fields)
	h.fields[0] = Field{Name: name, Value: value}
}

// Lookup busca name sin distinguir mayúsculas y devuelve el primer campo
// en el orden del store.
func (h *Header) Lookup(name string) (string, bool) {
	if h == nil {
		return "", false
	}
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Get es Lookup sin el bool.
func (h *Header) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

// Len devuelve la cantidad de campos, incluidos los duplicados.
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.fields)
}

// Fields devuelve una copia en el orden del store (último declarado primero).
func (h *Header) Fields() []Field {
	if h == nil {
		return nil
	}
	out := make([]Field, len(h.fields))
	copy(out, h.fields)
	return out
}
