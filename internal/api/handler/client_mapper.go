package handler

import (
	"github.com/h2eaux/gestion-api/internal/core/domain"
	"github.com/h2eaux/gestion-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateClientInput(req createClientRequest) ports.CreateClientInput {
	return ports.CreateClientInput{
		Nom:           *req.Nom,
		Prenom:        *req.Prenom,
		Telephone:     req.Telephone,
		Email:         req.Email,
		Adresse:       req.Adresse,
		Ville:         req.Ville,
		CodePostal:    req.CodePostal,
		TypeChauffage: req.TypeChauffage,
		Notes:         req.Notes,
	}
}

func toClientPatch(req updateClientRequest) domain.ClientPatch {
	return domain.ClientPatch{
		Nom:           req.Nom,
		Prenom:        req.Prenom,
		Telephone:     req.Telephone,
		Email:         req.Email,
		Adresse:       req.Adresse,
		Ville:         req.Ville,
		CodePostal:    req.CodePostal,
		TypeChauffage: req.TypeChauffage,
		Notes:         req.Notes,
	}
}
