// Package docs holds the swagger document served at /swagger.
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
		"/healthz": {
			"get": {
				"tags": [
					"System"
				],
				"summary": "Health check",
				"description": "Pings the store and lists the registered payment providers",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespHealth"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/handlers.RespHealth"
						}
					}
				}
			}
		},
		"/api/v1/payment/balance": {
			"get": {
				"tags": [
					"Payment"
				],
				"summary": "Get balance",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/v1/payment/create": {
			"post": {
				"tags": [
					"Payment"
				],
				"summary": "Create payment",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Payment request",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/checkout.CreatePaymentRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/v1/subscription": {
			"get": {
				"tags": [
					"Subscription"
				],
				"summary": "Get subscription",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/v1/subscription/cancel": {
			"post": {
				"tags": [
					"Subscription"
				],
				"summary": "Cancel subscription",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Cancel options",
						"name": "request",
						"in": "body",
						"required": false,
						"schema": {
							"$ref": "#/definitions/handlers.CancelSubscriptionRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/v1/credits/packs": {
			"get": {
				"tags": [
					"Credits"
				],
				"summary": "List credit packs",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				}
			}
		},
		"/api/v1/credits/cost": {
			"get": {
				"tags": [
					"Credits"
				],
				"summary": "Generation cost",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"parameters": [
					{
						"type": "boolean",
						"description": "Text generation",
						"name": "withText",
						"in": "query"
					},
					{
						"type": "boolean",
						"description": "Image generation",
						"name": "withImage",
						"in": "query"
					},
					{
						"type": "boolean",
						"description": "HD upgrade",
						"name": "hd",
						"in": "query"
					},
					{
						"type": "boolean",
						"description": "Ultra HD upgrade",
						"name": "ultraHd",
						"in": "query"
					},
					{
						"type": "boolean",
						"description": "Priority queue",
						"name": "priority",
						"in": "query"
					}
				]
			}
		},
		"/api/v1/credits/transactions": {
			"get": {
				"tags": [
					"Credits"
				],
				"summary": "List credit transactions",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Page size (default 50, max 100)",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Offset",
						"name": "offset",
						"in": "query"
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/v1/credits/actions": {
			"get": {
				"tags": [
					"Credits"
				],
				"summary": "List named actions",
				"description": "Credit cost and plan requirement of every named action.",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				}
			}
		},
		"/api/v1/credits/actions/{action}": {
			"get": {
				"tags": [
					"Credits"
				],
				"summary": "Check a named action",
				"description": "Reports whether the caller may perform the action now. Nothing is charged.",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Action name",
						"name": "action",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.RespDenial"
						}
					},
					"402": {
						"description": "Payment Required",
						"schema": {
							"$ref": "#/definitions/handlers.RespDenial"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.RespDenial"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/v1/credits/charge": {
			"post": {
				"tags": [
					"Credits"
				],
				"summary": "Charge a generation",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"402": {
						"description": "Payment Required",
						"schema": {
							"$ref": "#/definitions/handlers.RespDenial"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/handlers.RespDenial"
						}
					},
					"429": {
						"description": "Too Many Requests",
						"schema": {
							"$ref": "#/definitions/handlers.RespDenial"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Generation options",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.ChargeRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/payment/webhook": {
			"post": {
				"tags": [
					"Payment"
				],
				"summary": "Payment provider webhook (provider detected from the body)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				}
			}
		},
		"/api/payment/webhook/{provider}": {
			"post": {
				"tags": [
					"Payment"
				],
				"summary": "Payment provider webhook",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "yookassa, stripe or mock",
						"name": "provider",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/api/v1/admin/payments/list": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "List payments (Admin)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Filters, pagination and sorting",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/checkout.ScanPaymentsRequest"
						}
					}
				],
				"security": [
					{
						"BasicAuth": []
					}
				]
			}
		},
		"/api/v1/admin/payments/{id}/sync": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Sync payment (Admin)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "Local payment id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BasicAuth": []
					}
				]
			}
		},
		"/api/v1/admin/payments/{id}/refund": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Refund payment (Admin)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Local payment id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Refund options",
						"name": "request",
						"in": "body",
						"required": false,
						"schema": {
							"$ref": "#/definitions/handlers.RefundPaymentRequest"
						}
					}
				],
				"security": [
					{
						"BasicAuth": []
					}
				]
			}
		},
		"/api/v1/admin/providers/health": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "Provider health (Admin)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"security": [
					{
						"BasicAuth": []
					}
				]
			}
		},
		"/api/v1/admin/statistics": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Payment statistics (Admin)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Statistic request parameters",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/statistics.Request"
						}
					}
				],
				"security": [
					{
						"BasicAuth": []
					}
				]
			}
		},
		"/api/v1/admin/credits/gift": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Gift credits (Admin)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Gift",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.GiftCreditsRequest"
						}
					}
				],
				"security": [
					{
						"BasicAuth": []
					}
				]
			}
		},
		"/api/v1/admin/credits/refund": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Refund credits (Admin)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Credit refund",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.RefundCreditsRequest"
						}
					}
				],
				"security": [
					{
						"BasicAuth": []
					}
				]
			}
		},
		"/api/v1/admin/credits/referral": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Award referral (Admin)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Referral",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.ReferralRequest"
						}
					}
				],
				"security": [
					{
						"BasicAuth": []
					}
				]
			}
		},
		"/api/v1/admin/subscriptions/renew": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Renew subscription (Admin)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Renewal",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handlers.RenewSubscriptionRequest"
						}
					}
				],
				"security": [
					{
						"BasicAuth": []
					}
				]
			}
		},
		"/api/v1/admin/promo_codes": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Create promo code (Admin)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Promo code",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/checkout.CreatePromoCodeRequest"
						}
					}
				],
				"security": [
					{
						"BasicAuth": []
					}
				]
			}
		},
		"/api/v1/admin/promo_codes/{code}/deactivate": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Deactivate promo code (Admin)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "Promo code",
						"name": "code",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BasicAuth": []
					}
				]
			}
		},
		"/api/v1/admin/payments/{id}/notifications": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "Payment notifications (Admin)",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Local payment id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BasicAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/handlers.RespOK"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"handlers.RespHealth": {
			"type": "object",
			"properties": {
				"code": {
					"type": "integer"
				},
				"message": {
					"type": "string"
				},
				"data": {
					"type": "object",
					"properties": {
						"status": {
							"type": "string"
						},
						"database": {
							"type": "string"
						},
						"providers": {
							"type": "array",
							"items": {
								"type": "string"
							}
						}
					}
				}
			}
		},
		"handlers.RespOK": {
			"type": "object",
			"properties": {
				"code": {
					"type": "integer"
				},
				"message": {
					"type": "string"
				},
				"data": {}
			}
		},
		"handlers.RespDenial": {
			"type": "object",
			"properties": {
				"code": {
					"type": "integer"
				},
				"message": {
					"type": "string"
				},
				"data": {
					"$ref": "#/definitions/monetization.Denial"
				}
			}
		},
		"monetization.Denial": {
			"type": "object",
			"properties": {
				"reason": {
					"type": "string",
					"enum": [
						"auth",
						"subscription",
						"credits",
						"limit"
					]
				},
				"message": {
					"type": "string"
				},
				"upgradeRequired": {
					"type": "string"
				},
				"remaining": {
					"type": "integer"
				},
				"resetAt": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"checkout.CreatePaymentRequest": {
			"type": "object",
			"required": [
				"type"
			],
			"properties": {
				"type": {
					"type": "string",
					"enum": [
						"credits",
						"subscription"
					],
					"example": "credits"
				},
				"amount": {
					"type": "integer",
					"example": 50
				},
				"plan": {
					"type": "string",
					"enum": [
						"premium",
						"pro"
					],
					"example": "premium"
				},
				"provider": {
					"type": "string",
					"enum": [
						"yookassa",
						"stripe",
						"mock"
					],
					"example": "mock"
				},
				"promoCode": {
					"type": "string"
				}
			}
		},
		"handlers.CancelSubscriptionRequest": {
			"type": "object",
			"properties": {
				"immediate": {
					"type": "boolean"
				}
			}
		},
		"handlers.ChargeRequest": {
			"type": "object",
			"properties": {
				"withText": {
					"type": "boolean"
				},
				"withImage": {
					"type": "boolean"
				},
				"hd": {
					"type": "boolean"
				},
				"ultraHd": {
					"type": "boolean"
				},
				"priority": {
					"type": "boolean"
				},
				"requiredPlan": {
					"type": "string",
					"enum": [
						"free",
						"premium",
						"pro"
					]
				}
			}
		},
		"types.CommonFilter": {
			"type": "object",
			"properties": {
				"field": {
					"type": "string"
				},
				"operator": {
					"type": "string",
					"enum": [
						"eq",
						"not_eq",
						"lt",
						"lte",
						"gt",
						"gte",
						"range",
						"in"
					]
				},
				"values": {
					"type": "array",
					"items": {}
				}
			}
		},
		"checkout.ScanPaymentsRequest": {
			"type": "object",
			"properties": {
				"filters": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/types.CommonFilter"
					}
				},
				"from": {
					"type": "integer"
				},
				"size": {
					"type": "integer"
				},
				"sort_by": {
					"type": "string"
				},
				"sort_order": {
					"type": "string"
				}
			}
		},
		"handlers.RefundPaymentRequest": {
			"type": "object",
			"properties": {
				"amount": {
					"type": "integer"
				},
				"description": {
					"type": "string"
				}
			}
		},
		"statistics.Request": {
			"type": "object",
			"properties": {
				"filters": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/types.CommonFilter"
					}
				},
				"data_items": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"id": {
								"type": "string",
								"enum": [
									"daily_payment_count",
									"daily_gmv",
									"total_gmv",
									"daily_credits_sold",
									"daily_credits_spent",
									"active_subscription_count"
								]
							}
						}
					}
				}
			}
		},
		"handlers.GiftCreditsRequest": {
			"type": "object",
			"required": [
				"userId",
				"amount"
			],
			"properties": {
				"userId": {
					"type": "string"
				},
				"amount": {
					"type": "integer"
				},
				"description": {
					"type": "string"
				}
			}
		},
		"handlers.RefundCreditsRequest": {
			"type": "object",
			"required": [
				"userId",
				"amount"
			],
			"properties": {
				"userId": {
					"type": "string"
				},
				"amount": {
					"type": "integer"
				},
				"description": {
					"type": "string"
				},
				"transactionId": {
					"type": "string"
				}
			}
		},
		"handlers.ReferralRequest": {
			"type": "object",
			"required": [
				"referrerId",
				"refereeId"
			],
			"properties": {
				"referrerId": {
					"type": "string"
				},
				"refereeId": {
					"type": "string"
				}
			}
		},
		"handlers.RenewSubscriptionRequest": {
			"type": "object",
			"required": [
				"userId"
			],
			"properties": {
				"userId": {
					"type": "string"
				}
			}
		},
		"checkout.CreatePromoCodeRequest": {
			"type": "object",
			"required": [
				"code",
				"value",
				"maxUses"
			],
			"properties": {
				"code": {
					"type": "string",
					"example": "LAUNCH20"
				},
				"value": {
					"type": "integer",
					"example": 20
				},
				"maxUses": {
					"type": "integer",
					"example": 100
				},
				"expiresAt": {
					"type": "string",
					"format": "date-time"
				}
			}
		}
	},
	"securityDefinitions": {
		"BasicAuth": {
			"type": "basic"
		},
		"BearerAuth": {
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8888",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "AI Meme Generator Monetization API",
	Description:      "Credits, subscriptions and payment provider integration for the meme generator.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
