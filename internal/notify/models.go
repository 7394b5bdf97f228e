// Package notify carries the registry's success notifications to external
// observers (indexers, wallets, UIs). Events carry audit data only, no
// behavior: a failed emit is logged by the publisher implementation but does
// not unwind the operation that produced it.
package notify

import (
	id "acadreg/pkg/domain"
)

const (
	ActionCredentialIssued      = "credential.issued"
	ActionCredentialRevoked     = "credential.revoked"
	ActionInstitutionAuthorized = "institution.authorized"
)

// Event is the common envelope for all registry notifications. Only the
// fields relevant to the action are populated.
type Event struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Timestamp int64  `json:"timestamp"`

	CredentialID    id.CredentialID `json:"credential_id,omitempty"`
	StudentName     string          `json:"student_name,omitempty"`
	InstitutionName string          `json:"institution_name,omitempty"`
	Degree          string          `json:"degree,omitempty"`
	Issuer          id.Principal    `json:"issuer,omitempty"`

	Institution id.Principal `json:"institution,omitempty"`
	Revoker     id.Principal `json:"revoker,omitempty"`
}

// CredentialIssued builds the notification for a successful issuance.
func CredentialIssued(credID id.CredentialID, studentName, institutionName, degree string, issuer id.Principal) Event {
	return Event{
		Action:          ActionCredentialIssued,
		CredentialID:    credID,
		StudentName:     studentName,
		InstitutionName: institutionName,
		Degree:          degree,
		Issuer:          issuer,
	}
}

// CredentialRevoked builds the notification for a successful revocation.
func CredentialRevoked(credID id.CredentialID, revoker id.Principal) Event {
	return Event{
		Action:       ActionCredentialRevoked,
		CredentialID: credID,
		Revoker:      revoker,
	}
}

// InstitutionAuthorized builds the notification for a new authorized issuer.
func InstitutionAuthorized(institution id.Principal, institutionName string) Event {
	return Event{
		Action:          ActionInstitutionAuthorized,
		Institution:     institution,
		InstitutionName: institutionName,
	}
}
