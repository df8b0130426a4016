// Package docs registers the OpenAPI spec for gin-swagger, following
// swag's generated-docs.go convention (github.com/swaggo/swag's
// SwaggerInfo/Register pattern) rather than a hand-maintained JSON file.
package docs

import "github.com/swaggo/swag"

const swaggerTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Search Gateway API",
	Description:      "Normalized REST search API fronting Elasticsearch, OpenSearch, Meilisearch, and Typesense.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  swaggerTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
