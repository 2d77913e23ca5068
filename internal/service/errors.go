// Package service contains the service layer for the Tunely API
package service

import "errors"

var (
	// ErrCompanyNotFound is returned when a company id is unknown or not
	// linked to the requesting user
	ErrCompanyNotFound = errors.New("company not found")

	// ErrFinancialNotFound is returned when no statement exists for the
	// requested (company, year, quarter)
	ErrFinancialNotFound = errors.New("financial statement not found")

	// ErrUnknownCorpCode is returned when the disclosure registry has no
	// entry for a corp code being registered
	ErrUnknownCorpCode = errors.New("unknown corp code")

	// ErrCollectionInProgress is returned when a collection run is already
	// in flight for the company
	ErrCollectionInProgress = errors.New("collection already in progress")
)
