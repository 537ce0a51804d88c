package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Colegio API",
        "description": "School administration backend: DNI-based authentication, enrollment and records",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "DNI-based login and session management"},
        {"name": "Enrollment", "description": "Atomic student enrollment"},
        {"name": "Grades", "description": "Grade levels and seat capacity"},
        {"name": "Employees", "description": "Staff roster"},
        {"name": "Tutors", "description": "Guardian roster"},
        {"name": "Students", "description": "Learner records"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by DNI",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"},
                    "403": {"description": "Account disabled"},
                    "404": {"description": "No person linked to dni"}
                }
            }
        },
        "/auth/check": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Check current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/cambiar-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Password too short"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/alumnos/completo": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Enroll a student atomically",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollCompleteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/EnrollmentResult"}},
                    "400": {"description": "Validation error or no seats available"},
                    "404": {"description": "Grade, tutor, school or relationship not found"},
                    "409": {"description": "Duplicate student dni or link"}
                }
            }
        },
        "/grados/{id}/cupos": {
            "get": {
                "tags": ["Grades"],
                "summary": "Get grade capacity",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/GradeCapacity"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "dni": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["dni", "password"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "nueva": {"type": "string"}
            },
            "required": ["nueva"]
        },
        "EnrollCompleteRequest": {
            "type": "object",
            "properties": {
                "alumno": {"$ref": "#/definitions/EnrollStudentSection"},
                "relacion_grado": {"$ref": "#/definitions/EnrollGradeSection"},
                "relacion_tutor": {"$ref": "#/definitions/EnrollTutorSection"}
            },
            "required": ["alumno", "relacion_grado", "relacion_tutor"]
        },
        "EnrollStudentSection": {
            "type": "object",
            "properties": {
                "dni": {"type": "string"},
                "nombre": {"type": "string"},
                "apellido": {"type": "string"},
                "fecha_nacimiento": {"type": "string"},
                "genero": {"type": "string"},
                "observaciones": {"type": "string"}
            },
            "required": ["dni", "nombre", "apellido", "fecha_nacimiento"]
        },
        "EnrollGradeSection": {
            "type": "object",
            "properties": {
                "id_grado": {"type": "string"},
                "id_colegio_procedencia": {"type": "string"}
            },
            "required": ["id_grado", "id_colegio_procedencia"]
        },
        "EnrollTutorSection": {
            "type": "object",
            "properties": {
                "id_tutor": {"type": "string"},
                "id_parentesco": {"type": "string"}
            },
            "required": ["id_tutor", "id_parentesco"]
        },
        "EnrollmentResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "alumno_id": {"type": "string"},
                "alumno_dni": {"type": "string"},
                "relacion_grado_id": {"type": "string"},
                "relacion_tutor_id": {"type": "string"}
            }
        },
        "GradeCapacity": {
            "type": "object",
            "properties": {
                "grado_id": {"type": "string"},
                "nombre": {"type": "string"},
                "asientos_disponibles": {"type": "integer"},
                "tiene_cupos": {"type": "boolean"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
