package domain

import "time"

// Client is a customer contact record of the company.
type Client struct {
	ID            string    `json:"id" bson:"id"`
	Nom           string    `json:"nom" bson:"nom"`
	Prenom        string    `json:"prenom" bson:"prenom"`
	Telephone     string    `json:"telephone" bson:"telephone"`
	Email         string    `json:"email" bson:"email"`
	Adresse       string    `json:"adresse" bson:"adresse"`
	Ville         string    `json:"ville" bson:"ville"`
	CodePostal    string    `json:"code_postal" bson:"code_postal"`
	TypeChauffage string    `json:"type_chauffage" bson:"type_chauffage"`
	Notes         string    `json:"notes" bson:"notes"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// ClientPatch carries a partial update. Nil fields are left untouched.
type ClientPatch struct {
	Nom           *string
	Prenom        *string
	Telephone     *string
	Email         *string
	Adresse       *string
	Ville         *string
	CodePostal    *string
	TypeChauffage *string
	Notes         *string
}

// Apply copies every non-nil field of p onto c.
func (p ClientPatch) Apply(c *Client) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Nom, p.Nom)
	set(&c.Prenom, p.Prenom)
	set(&c.Telephone, p.Telephone)
	set(&c.Email, p.Email)
	set(&c.Adresse, p.Adresse)
	set(&c.Ville, p.Ville)
	set(&c.CodePostal, p.CodePostal)
	set(&c.TypeChauffage, p.TypeChauffage)
	set(&c.Notes, p.Notes)
}

// Fields returns the bson field names and values of the non-nil entries.
func (p ClientPatch) Fields() map[string]string {
	out := make(map[string]string)
	add := func(name string, v *string) {
		if v != nil {
			out[name] = *v
		}
	}
	add("nom", p.Nom)
	add("prenom", p.Prenom)
	add("telephone", p.Telephone)
	add("email", p.Email)
	add("adresse", p.Adresse)
	add("ville", p.Ville)
	add("code_postal", p.CodePostal)
	add("type_chauffage", p.TypeChauffage)
	add("notes", p.Notes)
	return out
}
