// Package docs registra la descripción OpenAPI del backend falso para
// http-swagger (mismo formato que genera swag init).
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"Bearer": []}],
    "paths": {
        "/auth/login/": {"post": {"tags": ["auth"], "summary": "Login con email y contraseña", "security": [], "responses": {"200": {"description": "access, refresh y user"}, "401": {"description": "credenciales inválidas"}}}},
        "/auth/refresh/": {"post": {"tags": ["auth"], "summary": "Nuevo access token desde el refresh", "security": [], "responses": {"200": {"description": "access"}}}},
        "/users/": {"post": {"tags": ["users"], "summary": "Registro", "security": [], "responses": {"201": {"description": "usuario creado"}, "400": {"description": "errores por campo"}}}},
        "/users/me/": {"get": {"tags": ["users"], "summary": "Usuario actual", "responses": {"200": {"description": "usuario"}}}},
        "/users/{id}/": {
            "get": {"tags": ["users"], "summary": "Usuario por id", "responses": {"200": {"description": "usuario"}}},
            "patch": {"tags": ["users"], "summary": "Editar perfil propio", "responses": {"200": {"description": "usuario"}}}
        },
        "/users/switch_role/": {"post": {"tags": ["users"], "summary": "Cambiar rol activo", "responses": {"200": {"description": "usuario"}}}},
        "/species/": {"get": {"tags": ["pets"], "summary": "Especies", "responses": {"200": {"description": "lista"}}}},
        "/breeds/": {"get": {"tags": ["pets"], "summary": "Razas (filtro species)", "responses": {"200": {"description": "lista"}}}},
        "/pets/": {
            "get": {"tags": ["pets"], "summary": "Mascotas propias y vinculadas", "responses": {"200": {"description": "lista"}}},
            "post": {"tags": ["pets"], "summary": "Crear mascota", "responses": {"201": {"description": "mascota"}}}
        },
        "/pets/link-pet/": {"post": {"tags": ["pets"], "summary": "Vincular mascota con otra cuenta", "responses": {"200": {"description": "ok"}}}},
        "/pets/{id}/": {
            "get": {"tags": ["pets"], "summary": "Mascota", "responses": {"200": {"description": "mascota"}}},
            "patch": {"tags": ["pets"], "summary": "Editar mascota", "responses": {"200": {"description": "mascota"}}},
            "delete": {"tags": ["pets"], "summary": "Borrar mascota", "responses": {"204": {"description": "borrada"}}}
        },
        "/services/": {
            "get": {"tags": ["services"], "summary": "Catálogo (provider, service_type, is_active)", "responses": {"200": {"description": "lista"}}},
            "post": {"tags": ["services"], "summary": "Crear servicio (activo requiere certificación)", "responses": {"201": {"description": "servicio"}, "403": {"description": "sin certificación aprobada"}}}
        },
        "/services/{id}/": {
            "get": {"tags": ["services"], "summary": "Servicio", "responses": {"200": {"description": "servicio"}}},
            "patch": {"tags": ["services"], "summary": "Editar o publicar", "responses": {"200": {"description": "servicio"}}},
            "delete": {"tags": ["services"], "summary": "Borrar", "responses": {"204": {"description": "borrado"}}}
        },
        "/certifications/": {
            "get": {"tags": ["certifications"], "summary": "Certificaciones (filtro provider)", "responses": {"200": {"description": "lista"}}},
            "post": {"tags": ["certifications"], "summary": "Subir certificación", "responses": {"201": {"description": "certificación PENDING"}}}
        },
        "/bookings/": {
            "get": {"tags": ["bookings"], "summary": "Reservas donde participo (filtro status)", "responses": {"200": {"description": "lista"}}},
            "post": {"tags": ["bookings"], "summary": "Crear reserva", "responses": {"201": {"description": "reserva PENDING"}}}
        },
        "/bookings/{id}/": {
            "get": {"tags": ["bookings"], "summary": "Reserva", "responses": {"200": {"description": "reserva"}}},
            "patch": {"tags": ["bookings"], "summary": "Cambiar estado", "responses": {"200": {"description": "reserva"}, "400": {"description": "transición inválida"}}},
            "delete": {"tags": ["bookings"], "summary": "Borrar reserva", "responses": {"204": {"description": "borrada"}}}
        },
        "/payments/calculate/": {"post": {"tags": ["payments"], "summary": "Cotización", "responses": {"200": {"description": "base_price, rate_percentage, platform_fee, client_total_payment"}}}},
        "/payments/create-preference/{id}/": {"post": {"tags": ["payments"], "summary": "Link de pago", "responses": {"200": {"description": "init_point"}}}},
        "/reviews/": {
            "get": {"tags": ["reviews"], "summary": "Reseñas (booking, service, provider)", "responses": {"200": {"description": "lista"}}},
            "post": {"tags": ["reviews"], "summary": "Crear reseña", "responses": {"201": {"description": "reseña"}}}
        },
        "/chat-rooms/": {"get": {"tags": ["chat"], "summary": "Salas", "responses": {"200": {"description": "lista"}}}},
        "/chat-rooms/{id}/": {"delete": {"tags": ["chat"], "summary": "Borrar sala", "responses": {"204": {"description": "borrada"}}}},
        "/messages/": {
            "get": {"tags": ["chat"], "summary": "Mensajes (room)", "responses": {"200": {"description": "lista"}}},
            "post": {"tags": ["chat"], "summary": "Enviar mensaje", "responses": {"201": {"description": "mensaje"}}}
        },
        "/chat/create-ticket/": {"post": {"tags": ["chat"], "summary": "Ticket de soporte", "responses": {"201": {"description": "sala"}}}},
        "/notifications/": {"get": {"tags": ["notifications"], "summary": "Notificaciones", "responses": {"200": {"description": "lista"}}}},
        "/notifications/unread_count/": {"get": {"tags": ["notifications"], "summary": "No leídas", "responses": {"200": {"description": "unread_count"}}}},
        "/notifications/{id}/mark_read/": {"post": {"tags": ["notifications"], "summary": "Marcar leída", "responses": {"200": {"description": "ok"}}}},
        "/notifications/mark_all_read/": {"post": {"tags": ["notifications"], "summary": "Marcar todas", "responses": {"200": {"description": "updated"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "PetCare mock API",
	Description:      "Backend falso en memoria para desarrollo y tests del cliente.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
