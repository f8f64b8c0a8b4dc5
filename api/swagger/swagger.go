package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SAT Prep API",
        "description": "Backend for SAT preparation: quizzes, practice exams, flashcards, and performance rankings",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh, session management"},
        {"name": "Statistics", "description": "Per-user activity snapshots and rankings"},
        {"name": "Quizzes", "description": "Topic catalog and quiz submissions"},
        {"name": "Exams", "description": "Practice exam catalog and submissions"},
        {"name": "Flashcards", "description": "Study deck and card management"},
        {"name": "Exports", "description": "Downloadable progress reports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Expired or revoked token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/stats/me": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Get my statistics",
                "description": "Recomputes and returns the caller's activity snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UserStats"}},
                    "503": {"description": "Backing store unavailable"}
                }
            }
        },
        "/stats/me/rankings": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Get my rankings",
                "description": "Places the caller within the active population by question volume and accuracy",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UserRankings"}},
                    "503": {"description": "Backing store unavailable"}
                }
            }
        },
        "/stats/users/{id}": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Get a user's cached statistics",
                "description": "Admin only. Returns the snapshot as stored, without recomputing.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UserStats"}},
                    "404": {"description": "Unknown user"}
                }
            }
        },
        "/quizzes/topics": {
            "get": {
                "tags": ["Quizzes"],
                "summary": "List quiz topics",
                "parameters": [
                    {"name": "section", "in": "query", "type": "string", "enum": ["MATH", "READING", "WRITING"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/quizzes/submissions": {
            "post": {
                "tags": ["Quizzes"],
                "summary": "Submit a quiz run",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/QuizSubmissionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Topic not found"}
                }
            }
        },
        "/exams": {
            "get": {
                "tags": ["Exams"],
                "summary": "List practice exams",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/submissions": {
            "post": {
                "tags": ["Exams"],
                "summary": "Submit a completed exam",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExamSubmissionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Exam not found"}
                }
            }
        },
        "/flashcards/decks": {
            "get": {
                "tags": ["Flashcards"],
                "summary": "List my decks",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Flashcards"],
                "summary": "Create a deck",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDeckRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/flashcards/decks/{id}": {
            "delete": {
                "tags": ["Flashcards"],
                "summary": "Delete a deck",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Deck not found"}
                }
            }
        },
        "/flashcards/decks/{id}/cards": {
            "get": {
                "tags": ["Flashcards"],
                "summary": "List deck cards",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Deck not found"}
                }
            },
            "post": {
                "tags": ["Flashcards"],
                "summary": "Add a card",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCardRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Deck not found"}
                }
            }
        },
        "/flashcards/decks/{id}/cards/{cardId}": {
            "delete": {
                "tags": ["Flashcards"],
                "summary": "Delete a card",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "cardId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Deck not found"}
                }
            }
        },
        "/exports/progress": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download progress report",
                "description": "Premium feature. Renders the caller's progress as a CSV or PDF download.",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "403": {"description": "Upgrade required"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "QuizSubmissionRequest": {
            "type": "object",
            "required": ["topic_id", "answers"],
            "properties": {
                "topic_id": {"type": "string"},
                "answers": {"type": "array", "items": {"$ref": "#/definitions/Answer"}}
            }
        },
        "ExamSubmissionRequest": {
            "type": "object",
            "required": ["exam_id", "answers"],
            "properties": {
                "exam_id": {"type": "string"},
                "answers": {"type": "array", "items": {"$ref": "#/definitions/Answer"}}
            }
        },
        "Answer": {
            "type": "object",
            "required": ["question_id"],
            "properties": {
                "question_id": {"type": "string"},
                "correct": {"type": "boolean"}
            }
        },
        "CreateDeckRequest": {
            "type": "object",
            "required": ["name", "section"],
            "properties": {
                "name": {"type": "string"},
                "section": {"type": "string", "enum": ["MATH", "READING", "WRITING"]}
            }
        },
        "CreateCardRequest": {
            "type": "object",
            "required": ["front", "back"],
            "properties": {
                "front": {"type": "string"},
                "back": {"type": "string"}
            }
        },
        "UserStats": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "total_questions": {"type": "integer"},
                "accuracy": {"type": "integer"},
                "last_updated": {"type": "string", "format": "date-time"}
            }
        },
        "RankingResult": {
            "type": "object",
            "properties": {
                "position": {"type": "integer"},
                "percentile": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "UserRankings": {
            "type": "object",
            "properties": {
                "questions_ranking": {"$ref": "#/definitions/RankingResult"},
                "accuracy_ranking": {"$ref": "#/definitions/RankingResult"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"type": "object"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
