// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/digi3/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Connexion API",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/login": {
            "get": {"produces": ["application/json"], "tags": ["Auth"], "summary": "Formulaire de connexion", "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/x-www-form-urlencoded"], "tags": ["Auth"], "summary": "Connexion (formulaire)", "responses": {"303": {"description": "See Other"}}}
        },
        "/logout": {
            "post": {"tags": ["Auth"], "summary": "Déconnexion", "responses": {"303": {"description": "See Other"}}}
        },
        "/dashboard": {
            "get": {"produces": ["application/json"], "tags": ["Auth"], "summary": "Tableau de bord", "responses": {"200": {"description": "OK"}}}
        },
        "/project/manage": {
            "get": {"produces": ["application/json"], "tags": ["Projects"], "summary": "Liste des projets", "responses": {"200": {"description": "OK"}}}
        },
        "/project/manage/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Projects"],
                "summary": "Tableau d'un projet",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/management-project/update-task-position": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Board"],
                "summary": "Déplacer une tâche sur le tableau",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}
            }
        },
        "/task/{id}/update-status": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Changer le statut",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/reports/summary": {
            "get": {"produces": ["application/json"], "tags": ["Reports"], "summary": "Statistiques", "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Digi3 API",
	Description:      "Gestion de projets et tableau des tâches.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
