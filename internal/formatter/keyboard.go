package formatter

import (
	"encoding/json"

	"github.com/go-telegram/bot/models"

	appmodels "github.com/ashmarin/codemail/pkg/models"
)

// BuildEmailKeyboard creates the inline keyboard for an email notification.
// The code button re-shows the code in an alert so it can be copied.
func BuildEmailKeyboard(msgID int64, code string, isRead bool) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	if code != "" {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text: code,
			CallbackData: EncodeCallback(appmodels.CallbackData{
				Action:    appmodels.CallbackShowCode,
				MessageID: msgID,
			}),
		}})
	}

	actionRow := []models.InlineKeyboardButton{}
	if !isRead {
		actionRow = append(actionRow, models.InlineKeyboardButton{
			Text: "Mark read",
			CallbackData: EncodeCallback(appmodels.CallbackData{
				Action:    appmodels.CallbackMarkRead,
				MessageID: msgID,
			}),
		})
	}
	actionRow = append(actionRow, models.InlineKeyboardButton{
		Text: "Delete",
		CallbackData: EncodeCallback(appmodels.CallbackData{
			Action:    appmodels.CallbackDelete,
			MessageID: msgID,
		}),
	})
	rows = append(rows, actionRow)

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// EncodeCallback encodes callback data to string.
func EncodeCallback(data appmodels.CallbackData) string {
	b, _ := json.Marshal(data)
	return string(b)
}

// DecodeCallback decodes callback data from string.
func DecodeCallback(data string) (appmodels.CallbackData, error) {
	var cb appmodels.CallbackData
	err := json.Unmarshal([]byte(data), &cb)
	return cb, err
}
