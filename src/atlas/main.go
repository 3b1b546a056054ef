// Command atlas prints the Postgres DDL of every model for Atlas migrations.
package main

import (
	"bookstore/src/models"
	"io"
	"log"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"
)

func main() {
	stmts, err := gormschema.New("postgres").Load(models.All()...)
	if err != nil {
		log.Printf("Error loading gorm schema: %s\n", err.Error())
		os.Exit(1)
	}
	io.WriteString(os.Stdout, stmts)
}
