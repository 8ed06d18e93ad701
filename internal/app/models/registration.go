package models

import "time"

// Education is one education entry of an instructor application
type Education struct {
	Institution  string `json:"institution" example:"Hanoi University of Science"`
	Degree       string `json:"degree" example:"BSc"`
	FieldOfStudy string `json:"fieldOfStudy" example:"Computer Science"`
	StartYear    int    `json:"startYear" example:"2014"`
	EndYear      int    `json:"endYear" example:"2018"`
	IsCurrent    bool   `json:"isCurrent"`
}

// Certificate is one certificate entry. DocumentURL and DocumentFileID are written by uploads only.
type Certificate struct {
	Name           string `json:"name" example:"AWS Solutions Architect"`
	Issuer         string `json:"issuer" example:"Amazon"`
	IssueDate      string `json:"issueDate" example:"2023-05-01"`
	DocumentURL    string `json:"documentUrl"`
	DocumentFileID string `json:"documentFileId"`
	ClassifyResult string `json:"classifyResult"`
}

// WorkExperience is one employment entry. Dates use YYYY-MM-DD.
type WorkExperience struct {
	Company     string `json:"company" example:"Acme"`
	Position    string `json:"position" example:"Backend Engineer"`
	StartDate   string `json:"startDate" example:"2019-01-01"`
	EndDate     string `json:"endDate"`
	IsCurrent   bool   `json:"isCurrent"`
	Description string `json:"description"`
}

// BankInfo holds payout account details
type BankInfo struct {
	BankCode      string `json:"bankCode" validate:"notblank" example:"VCB"`
	AccountHolder string `json:"accountHolder" validate:"notblank" example:"NGUYEN VAN A"`
	AccountNumber string `json:"accountNumber" validate:"digits,min=6,max=20" example:"0123456789"`
}

// SocialLinks are optional public profile links
type SocialLinks struct {
	Website  string `json:"website" validate:"omitempty,url"`
	LinkedIn string `json:"linkedin" validate:"omitempty,url"`
	Github   string `json:"github" validate:"omitempty,url"`
	Youtube  string `json:"youtube" validate:"omitempty,url"`
}

// RegistrationForm is the form record of the instructor registration wizard
type RegistrationForm struct {
	FullName       string           `json:"fullName"`
	Email          string           `json:"email"`
	PhoneNumber    string           `json:"phoneNumber"`
	Country        string           `json:"country"`
	AvatarURL      string           `json:"avatarUrl"`
	AvatarFileID   string           `json:"avatarFileId"`
	Bio            string           `json:"bio"`
	Headline       string           `json:"headline"`
	ExpertiseAreas []string         `json:"expertiseAreas"`
	Education      []Education      `json:"education"`
	Certificates   []Certificate    `json:"certificates"`
	WorkExperience []WorkExperience `json:"workExperience"`
	BankInfo       BankInfo         `json:"bankInfo"`
	SocialLinks    SocialLinks      `json:"socialLinks"`
	AIReview       AIReview         `json:"aiReview"`
	AgreeToTerms   bool             `json:"agreeToTerms"`
}

// RegistrationPayload is the body sent to the marketplace registration endpoints
type RegistrationPayload struct {
	FullName        string           `json:"fullName"`
	Email           string           `json:"email"`
	PhoneNumber     string           `json:"phoneNumber"`
	Country         string           `json:"country"`
	AvatarURL       string           `json:"avatarUrl,omitempty"`
	Bio             string           `json:"bio"`
	Headline        string           `json:"headline"`
	ExpertiseAreas  []string         `json:"expertiseAreas"`
	Education       []Education      `json:"education"`
	Certificates    []Certificate    `json:"certificates"`
	WorkExperience  []WorkExperience `json:"workExperience"`
	BankInfo        BankInfo         `json:"bankInfo"`
	SocialLinks     SocialLinks      `json:"socialLinks"`
	AIReviewSkipped bool             `json:"aiReviewSkipped"`
	AIReviewScore   *float64         `json:"aiReviewScore,omitempty"`
}

// Registration is an instructor application as returned by the marketplace
type Registration struct {
	ID              int64              `json:"id" example:"17"`
	UserID          int64              `json:"userId" example:"5"`
	Status          RegistrationStatus `json:"status" example:"PENDING"`
	RejectionReason string             `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
	RegistrationPayload
}

// ToForm pre-fills a registration form from an existing application
func (r *Registration) ToForm() RegistrationForm {
	return RegistrationForm{
		FullName:       r.FullName,
		Email:          r.Email,
		PhoneNumber:    r.PhoneNumber,
		Country:        r.Country,
		AvatarURL:      r.AvatarURL,
		Bio:            r.Bio,
		Headline:       r.Headline,
		ExpertiseAreas: append([]string(nil), r.ExpertiseAreas...),
		Education:      append([]Education(nil), r.Education...),
		Certificates:   append([]Certificate(nil), r.Certificates...),
		WorkExperience: append([]WorkExperience(nil), r.WorkExperience...),
		BankInfo:       r.BankInfo,
		SocialLinks:    r.SocialLinks,
		AIReview:       AIReview{State: AIReviewNone},
	}
}

// RegistrationSummary is one row of the admin application table
type RegistrationSummary struct {
	ID        int64              `json:"id"`
	UserID    int64              `json:"userId"`
	FullName  string             `json:"fullName"`
	Email     string             `json:"email"`
	Headline  string             `json:"headline"`
	Status    RegistrationStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}
