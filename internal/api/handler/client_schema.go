package handler

// --- Request / Response types ---

type createClientRequest struct {
	Nom           *string `json:"nom" validate:"required"`
	Prenom        *string `json:"prenom" validate:"required"`
	Telephone     string  `json:"telephone"`
	Email         string  `json:"email"`
	Adresse       string  `json:"adresse"`
	Ville         string  `json:"ville"`
	CodePostal    string  `json:"code_postal"`
	TypeChauffage string  `json:"type_chauffage"`
	Notes         string  `json:"notes"`
}

// updateClientRequest carries a partial update; omitted fields stay untouched.
type updateClientRequest struct {
	Nom           *string `json:"nom"`
	Prenom        *string `json:"prenom"`
	Telephone     *string `json:"telephone"`
	Email         *string `json:"email"`
	Adresse       *string `json:"adresse"`
	Ville         *string `json:"ville"`
	CodePostal    *string `json:"code_postal"`
	TypeChauffage *string `json:"type_chauffage"`
	Notes         *string `json:"notes"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse documents the envelope rendered by the HTTP error handler.
type errorResponse struct {
	Error string `json:"error"`
}
