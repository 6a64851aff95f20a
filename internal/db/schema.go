package db

import _ "embed"

// Schema holds the DDL for the tables the snapshot repository reads.
//
//go:embed schema.sql
var Schema string
