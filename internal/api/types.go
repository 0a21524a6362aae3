package api

import (
	"net/mail"
	"strings"
)

type LoginResponse struct {
	Token     string `json:"token"`
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
	Role      string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"motDePasse"`
}

// RegisterRequest carries the common fields plus the block that matches
// Role; fields of other roles are left empty.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"motDePasse"`
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
	Phone     string `json:"telephone,omitempty"`
	Role      string `json:"role"`

	// ETUDIANT
	Level     string `json:"niveau,omitempty"`
	Program   string `json:"filiere,omitempty"`
	BirthDate string `json:"dateNaissance,omitempty"`

	// ENTREPRISE
	CompanyName string `json:"nomEntreprise,omitempty"`
	Sector      string `json:"secteurActivite,omitempty"`
	Address     string `json:"adresse,omitempty"`
	Website     string `json:"siteWeb,omitempty"`
	Description string `json:"description,omitempty"`

	// TUTEUR
	Department string `json:"departement,omitempty"`
	Specialty  string `json:"specialite,omitempty"`
}

const MinPasswordLength = 8

func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return &ValidationError{Field: "email", Message: "email is invalid"}
	}
	if len(r.Password) < MinPasswordLength {
		return &ValidationError{Field: "motDePasse", Message: "password must be at least 8 characters"}
	}
	if strings.TrimSpace(r.LastName) == "" || strings.TrimSpace(r.FirstName) == "" {
		return &ValidationError{Field: "nom", Message: "first and last name are required"}
	}
	switch r.Role {
	case "ETUDIANT", "ENTREPRISE", "ADMINISTRATION", "TUTEUR":
	default:
		return &ValidationError{Field: "role", Message: "role is required"}
	}
	if r.Role == "ENTREPRISE" && strings.TrimSpace(r.CompanyName) == "" {
		return &ValidationError{Field: "nomEntreprise", Message: "company name is required"}
	}
	return nil
}

type Profile struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	LastName    string `json:"nom"`
	FirstName   string `json:"prenom"`
	Phone       string `json:"telephone,omitempty"`
	Role        string `json:"role,omitempty"`
	Level       string `json:"niveau,omitempty"`
	Program     string `json:"filiere,omitempty"`
	BirthDate   string `json:"dateNaissance,omitempty"`
	CVFile      string `json:"cvFichier,omitempty"`
	CompanyName string `json:"nomEntreprise,omitempty"`
	Sector      string `json:"secteurActivite,omitempty"`
	Address     string `json:"adresse,omitempty"`
	Website     string `json:"siteWeb,omitempty"`
	Description string `json:"description,omitempty"`
	Department  string `json:"departement,omitempty"`
	Specialty   string `json:"specialite,omitempty"`
}

type PasswordChange struct {
	Current string `json:"ancienMotDePasse"`
	New     string `json:"nouveauMotDePasse"`
}

// ValidatePasswordChange checks the new password against its confirmation
// before anything is sent.
func ValidatePasswordChange(current, next, confirm string) (PasswordChange, error) {
	if current == "" {
		return PasswordChange{}, &ValidationError{Field: "ancienMotDePasse", Message: "current password is required"}
	}
	if next != confirm {
		return PasswordChange{}, &ValidationError{Field: "nouveauMotDePasse", Message: "passwords do not match"}
	}
	if len(next) < MinPasswordLength {
		return PasswordChange{}, &ValidationError{Field: "nouveauMotDePasse", Message: "password must be at least 8 characters"}
	}
	return PasswordChange{Current: current, New: next}, nil
}

const (
	OfferTypeInternship = "STAGE"
	OfferTypeWorkStudy  = "ALTERNANCE"
)

type Offre struct {
	ID                int64   `json:"id,omitempty"`
	Title             string  `json:"titre"`
	Description       string  `json:"description"`
	Type              string  `json:"typeOffre"`
	Duration          string  `json:"duree,omitempty"`
	StartDate         string  `json:"dateDebut,omitempty"`
	EndDate           string  `json:"dateFin,omitempty"`
	RequiredSkills    string  `json:"competencesRequises,omitempty"`
	Pay               float64 `json:"remuneration,omitempty"`
	Status            string  `json:"statut,omitempty"`
	CompanyName       string  `json:"nomEntreprise,omitempty"`
	ApplicationsCount int     `json:"nombreCandidatures,omitempty"`
}

func (o Offre) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return &ValidationError{Field: "titre", Message: "title is required"}
	}
	if strings.TrimSpace(o.Description) == "" {
		return &ValidationError{Field: "description", Message: "description is required"}
	}
	if o.Type != OfferTypeInternship && o.Type != OfferTypeWorkStudy {
		return &ValidationError{Field: "typeOffre", Message: "offer type must be STAGE or ALTERNANCE"}
	}
	if o.StartDate != "" && o.EndDate != "" && o.EndDate < o.StartDate {
		return &ValidationError{Field: "dateFin", Message: "end date is before start date"}
	}
	return nil
}

type OffreFilter struct {
	Search        string
	Type          string
	StartAfter    string
	StartBefore   string
	SortBy        string
	SortDirection string
	Page          int
	Size          int
}

type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

const (
	StatusPending  = "EN_ATTENTE"
	StatusAccepted = "ACCEPTEE"
	StatusSigned   = "SIGNEE"
	StatusArchived = "ARCHIVEE"
)

type Candidature struct {
	ID               int64  `json:"id,omitempty"`
	OffreID          int64  `json:"offreId,omitempty"`
	OffreTitle       string `json:"offreTitre,omitempty"`
	OffreType        string `json:"offreTypeOffre,omitempty"`
	CompanyName      string `json:"entrepriseNom,omitempty"`
	StudentID        int64  `json:"etudiantId,omitempty"`
	StudentLastName  string `json:"etudiantNom,omitempty"`
	StudentFirstName string `json:"etudiantPrenom,omitempty"`
	StudentLevel     string `json:"etudiantNiveau,omitempty"`
	StudentProgram   string `json:"etudiantFiliere,omitempty"`
	CoverLetter      string `json:"lettreMotivation,omitempty"`
	Status           string `json:"statut,omitempty"`
	Comment          string `json:"commentaire,omitempty"`
	AppliedAt        string `json:"dateCandidature,omitempty"`
}

type Convention struct {
	ID               int64  `json:"id"`
	OffreTitle       string `json:"offreTitre,omitempty"`
	StudentLastName  string `json:"etudiantNom,omitempty"`
	StudentFirstName string `json:"etudiantPrenom,omitempty"`
	CompanyName      string `json:"entrepriseNom,omitempty"`
	StartDate        string `json:"dateDebutStage,omitempty"`
	EndDate          string `json:"dateFinStage,omitempty"`
	Status           string `json:"statut,omitempty"`
	SignedByStudent  bool   `json:"signatureEtudiant"`
	SignedByCompany  bool   `json:"signatureEntreprise"`
	SignedByAdmin    bool   `json:"signatureAdministration"`
	PDFFile          string `json:"fichierPdf,omitempty"`
}

type Notification struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	Read      bool   `json:"lu"`
	Link      string `json:"lienAction,omitempty"`
	CreatedAt string `json:"dateCreation,omitempty"`
}

type Suivi struct {
	ID               int64  `json:"id"`
	ConventionID     int64  `json:"conventionId"`
	TutorID          int64  `json:"tuteurId,omitempty"`
	StudentLastName  string `json:"etudiantNom,omitempty"`
	StudentFirstName string `json:"etudiantPrenom,omitempty"`
	CompanyName      string `json:"entrepriseNom,omitempty"`
	StartDate        string `json:"dateDebut,omitempty"`
	EndDate          string `json:"dateFin,omitempty"`
	Progress         string `json:"etatAvancement,omitempty"`
	Comments         string `json:"commentaires,omitempty"`
	LastVisit        string `json:"derniereVisite,omitempty"`
}

type AssignTutor struct {
	ConventionID int64 `json:"conventionId"`
	TutorID      int64 `json:"tuteurId"`
}

func (a AssignTutor) Validate() error {
	if a.ConventionID <= 0 || a.TutorID <= 0 {
		return &ValidationError{Field: "tuteurId", Message: "convention and tutor are required"}
	}
	return nil
}

const (
	ProgressOngoing    = "EN_COURS"
	ProgressDone       = "TERMINE"
	ProgressStruggling = "EN_DIFFICULTE"
)

type ProgressUpdate struct {
	Progress  string `json:"etatAvancement"`
	Comments  string `json:"commentaires,omitempty"`
	LastVisit string `json:"derniereVisite,omitempty"`
}

type Stats struct {
	TotalOffres         int64 `json:"totalOffres"`
	PendingOffres       int64 `json:"offresEnAttente"`
	TotalCandidatures   int64 `json:"totalCandidatures"`
	PendingCandidatures int64 `json:"candidaturesEnAttente"`
	TotalConventions    int64 `json:"totalConventions"`
	SignedConventions   int64 `json:"conventionsSignees"`
	ActiveInternships   int64 `json:"stagesActifs"`
}

type messageResponse struct {
	Message string `json:"message"`
}
