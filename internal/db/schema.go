package db

import _ "embed"

// Schema is the DDL for the patients table. The service never applies it;
// operators create the table out of band and test helpers apply it to scratch databases.
//
//go:embed schema.sql
var Schema string

// ContactUniqueConstraint is the name of the UNIQUE constraint on patients.contact.
const ContactUniqueConstraint = "patients_contact_key"
