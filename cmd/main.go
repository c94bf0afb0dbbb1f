// Command cookstove runs the cookstove telemetry API and its tooling.
package main

import (
	_ "time/tzdata" // stats.timezone must resolve on hosts without a zoneinfo database
)

// @title                      Cookstove Tracker API
// @version                    1.0
// @description                Stove pairing, telemetry ingestion and usage reporting.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @securityDefinitions.apikey ApiKeyAuth
// @in                         header
// @name                       Authorization
func main() {
	Execute()
}
