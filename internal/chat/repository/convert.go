package repository

import (
	"taskchat/internal/chat/models"
	"taskchat/internal/dbmysql"
)

func toRow(m *models.Message) *dbmysql.Message {
	row := &dbmysql.Message{
		ID:          m.ID,
		SenderID:    m.SenderID,
		Content:     m.Content(),
		MessageType: string(m.Kind),
		Status:      string(m.Status),
		DeliveredAt: m.DeliveredAt,
		ReadAt:      m.ReadAt,
		IsDeleted:   m.IsDeleted,
		DeletedBy:   m.DeletedBy,
		DeletedAt:   m.DeletedAt,
		CreatedAt:   m.CreatedAt,
	}
	if m.RecipientID != "" {
		recipient := m.RecipientID
		row.RecipientID = &recipient
	}
	if fb, ok := m.File(); ok {
		row.FileURL = &fb.Path
		row.FileName = &fb.OriginalName
		row.FileSize = &fb.Size
		row.FileMIMEType = &fb.MIMEType
	}
	return row
}

func toModel(row *dbmysql.Message) *models.Message {
	m := &models.Message{
		ID:          row.ID,
		SenderID:    row.SenderID,
		Kind:        models.MessageKind(row.MessageType),
		Status:      models.MessageStatus(row.Status),
		DeliveredAt: row.DeliveredAt,
		ReadAt:      row.ReadAt,
		IsDeleted:   row.IsDeleted,
		DeletedBy:   row.DeletedBy,
		DeletedAt:   row.DeletedAt,
		CreatedAt:   row.CreatedAt,
	}
	if row.RecipientID != nil {
		m.RecipientID = *row.RecipientID
	}

	if m.Kind.RequiresFile() && row.FileURL != nil {
		fb := models.FileBody{Path: *row.FileURL, OriginalName: row.Content}
		if row.FileName != nil && *row.FileName != "" {
			fb.OriginalName = *row.FileName
		}
		if row.FileSize != nil {
			fb.Size = *row.FileSize
		}
		if row.FileMIMEType != nil {
			fb.MIMEType = *row.FileMIMEType
		}
		m.Body = fb
	} else {
		m.Body = models.TextBody{Text: row.Content}
	}

	if len(row.ReadBy) > 0 {
		m.ReadBy = make([]models.ReadReceipt, len(row.ReadBy))
		for i, r := range row.ReadBy {
			m.ReadBy[i] = models.ReadReceipt{UserID: r.UserID, ReadAt: r.ReadAt}
		}
	}
	return m
}
