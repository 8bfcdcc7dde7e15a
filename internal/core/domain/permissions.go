package domain

// Capability names one feature area a user may be granted access to.
type Capability string

const (
	CapClients    Capability = "clients"
	CapDocuments  Capability = "documents"
	CapChantiers  Capability = "chantiers"
	CapCalculsPAC Capability = "calculs_pac"
	CapCatalogues Capability = "catalogues"
	CapChat       Capability = "chat"
	CapParametres Capability = "parametres"
)

// Capabilities lists every known capability in display order.
var Capabilities = []Capability{
	CapClients,
	CapDocuments,
	CapChantiers,
	CapCalculsPAC,
	CapCatalogues,
	CapChat,
	CapParametres,
}

// Permissions is the per-user grant set. Every known capability has a field,
// so a key missing from a stored document decodes as false.
type Permissions struct {
	Clients    bool `json:"clients" bson:"clients"`
	Documents  bool `json:"documents" bson:"documents"`
	Chantiers  bool `json:"chantiers" bson:"chantiers"`
	CalculsPAC bool `json:"calculs_pac" bson:"calculs_pac"`
	Catalogues bool `json:"catalogues" bson:"catalogues"`
	Chat       bool `json:"chat" bson:"chat"`
	Parametres bool `json:"parametres" bson:"parametres"`
}

// Allows reports whether c is granted. Unknown capabilities are denied.
func (p Permissions) Allows(c Capability) bool {
	switch c {
	case CapClients:
		return p.Clients
	case CapDocuments:
		return p.Documents
	case CapChantiers:
		return p.Chantiers
	case CapCalculsPAC:
		return p.CalculsPAC
	case CapCatalogues:
		return p.Catalogues
	case CapChat:
		return p.Chat
	case CapParametres:
		return p.Parametres
	default:
		return false
	}
}

// DefaultPermissions returns the grant set a newly created account of the
// given role starts with. Admins get everything; employees get everything
// except settings. Unknown roles get nothing.
func DefaultPermissions(role Role) Permissions {
	switch role {
	case RoleAdmin:
		return Permissions{
			Clients:    true,
			Documents:  true,
			Chantiers:  true,
			CalculsPAC: true,
			Catalogues: true,
			Chat:       true,
			Parametres: true,
		}
	case RoleEmployee:
		return Permissions{
			Clients:    true,
			Documents:  true,
			Chantiers:  true,
			CalculsPAC: true,
			Catalogues: true,
			Chat:       true,
		}
	default:
		return Permissions{}
	}
}
