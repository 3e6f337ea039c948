package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	ConfigurationID ID
	ReportID        ID
	OwnerID         ID
)

func (id ConfigurationID) String() string { return ID(id).String() }
func (id ReportID) String() string        { return ID(id).String() }
func (id OwnerID) String() string         { return ID(id).String() }

func NewConfigurationID() ConfigurationID { return ConfigurationID(NewID()) }
func NewReportID() ReportID               { return ReportID(NewID()) }

// ParseConfigurationID parses a string into ConfigurationID
func ParseConfigurationID(s string) (ConfigurationID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("configuration ID cannot be empty")
	}
	return ConfigurationID(s), nil
}

// ParseReportID parses a string into ReportID
func ParseReportID(s string) (ReportID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("report ID cannot be empty")
	}
	return ReportID(s), nil
}

// ParseOwnerID parses a string into OwnerID
func ParseOwnerID(s string) (OwnerID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("owner ID cannot be empty")
	}
	return OwnerID(s), nil
}
