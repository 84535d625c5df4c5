package backend

import (
	"github.com/xeipuuv/gojsonschema"
)

const transactionSchemaJSON = `{
	"type": "object",
	"required": ["id", "sourceAccountId", "amount", "type", "status", "createdAt"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"secondaryId": {"type": "string"},
		"sourceAccountId": {"type": "string"},
		"destinationAccountNumber": {"type": "string"},
		"amount": {"type": ["string", "number"]},
		"currency": {"type": "string"},
		"type": {"enum": ["TRANSFER", "DEPOSIT", "WITHDRAWAL", "PAYMENT", "TOPUP"]},
		"status": {"enum": ["PENDING", "COMPLETED", "FAILED", "CANCELLED"]},
		"description": {"type": "string"},
		"referenceNumber": {"type": "string"},
		"createdAt": {"type": "string", "format": "date-time"},
		"completedAt": {"type": ["string", "null"]}
	}
}`

const accountSchemaJSON = `{
	"type": "object",
	"required": ["id", "accountNumber", "type", "balance"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"ownerId": {"type": "string"},
		"accountNumber": {"type": "string"},
		"type": {"enum": ["CHECKING", "SAVING", "MORTGAGE"]},
		"balance": {"type": ["string", "number"]},
		"interestRate": {"type": ["string", "number", "null"]},
		"currency": {"type": "string"},
		"active": {"type": "boolean"}
	}
}`

var (
	transferResponseSchema = mustSchema(`{
		"type": "object",
		"anyOf": [
			{
				"required": ["otpRequired", "transactionId"],
				"properties": {
					"otpRequired": {"enum": [true]},
					"transactionId": {"type": "string", "minLength": 1},
					"message": {"type": "string"}
				}
			},
			{
				"required": ["transaction"],
				"properties": {
					"otpRequired": {"enum": [false]},
					"transaction": ` + transactionSchemaJSON + `
				}
			}
		]
	}`)

	transactionResponseSchema = mustSchema(`{
		"type": "object",
		"required": ["transaction"],
		"properties": {
			"transaction": ` + transactionSchemaJSON + `
		}
	}`)

	accountsResponseSchema = mustSchema(`{
		"type": "object",
		"required": ["accounts"],
		"properties": {
			"accounts": {
				"type": ["array", "null"],
				"items": ` + accountSchemaJSON + `
			}
		}
	}`)
)

func mustSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic("backend: invalid response schema: " + err.Error())
	}
	return schema
}
