// services/expiry_digest_service.go - Expiring documents email digest
package services

import (
	"fmt"
	"html"
	"os"
	"sort"
	"strings"
	"time"

	"compliance-dashboard-api/config"
	"compliance-dashboard-api/models"
	"compliance-dashboard-api/utils"
)

type digestEntry struct {
	OwnerName    string
	DocumentType string
	ExpiryDate   string
	Expiry       utils.ExpiryStatus
}

func digestRecipients() []string {
	recipients := []string{}
	for _, raw := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		email := strings.TrimSpace(raw)
		if email != "" && utils.ValidateEmail(email) {
			recipients = append(recipients, email)
		}
	}
	return recipients
}

func collectExpiringEntries(today time.Time) ([]digestEntry, error) {
	var records []models.DocumentRecord
	err := config.DB.
		Where("expiry_date IS NOT NULL AND is_not_applicable = ?", false).
		Find(&records).Error
	if err != nil {
		return nil, utils.TransientError("fetch records with expiry", err)
	}

	types, err := ListDocumentTypes()
	if err != nil {
		return nil, err
	}
	typeNames := make(map[int]string, len(types))
	for _, t := range types {
		typeNames[t.DocumentTypeID] = t.DocumentTypeName
	}

	ownerNames := make(map[string]string)
	for _, ownerType := range models.ValidOwnerTypes() {
		owners, err := LoadOwners(ownerType)
		if err != nil {
			return nil, err
		}
		for _, owner := range owners {
			ownerNames[fmt.Sprintf("%s:%d", owner.OwnerType, owner.OwnerID)] = owner.DisplayName
		}
	}

	entries := []digestEntry{}
	for _, record := range records {
		if record.ExpiryDate == nil || !record.HasFiles() {
			continue
		}
		expiry := utils.ClassifyExpiry(*record.ExpiryDate, today)
		if expiry.Status == utils.ExpiryStatusNone || expiry.Status == utils.ExpiryStatusValid {
			continue
		}

		ownerName := ownerNames[fmt.Sprintf("%s:%d", record.OwnerType, record.OwnerID)]
		if ownerName == "" {
			ownerName = fmt.Sprintf("%s #%d", record.OwnerType, record.OwnerID)
		}
		typeName := typeNames[record.DocumentTypeID]
		if typeName == "" {
			// column was deleted; its records are dead data
			continue
		}

		entries = append(entries, digestEntry{
			OwnerName:    ownerName,
			DocumentType: typeName,
			ExpiryDate:   *record.ExpiryDate,
			Expiry:       expiry,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Expiry.DaysLeft < entries[j].Expiry.DaysLeft
	})
	return entries, nil
}

func renderDigestHTML(entries []digestEntry) string {
	var b strings.Builder
	b.WriteString("<h2>Documents expiring soon</h2>")
	b.WriteString("<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">")
	b.WriteString("<tr><th>Owner</th><th>Document</th><th>Expiry date</th><th>Status</th></tr>")
	for _, entry := range entries {
		b.WriteString("<tr>")
		fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(entry.OwnerName))
		fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(entry.DocumentType))
		fmt.Fprintf(&b, "<td>%s</td>", entry.ExpiryDate)
		fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(entry.Expiry.Label))
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

// SendExpiryDigest emails administrators a table of documents that
// are expired or expiring within 60 days. Returns the number of
// entries in the digest; zero entries means no mail is sent.
func SendExpiryDigest(today time.Time) (int, error) {
	recipients := digestRecipients()
	if len(recipients) == 0 {
		return 0, fmt.Errorf("no valid digest recipients (ADMIN_EMAILS)")
	}

	entries, err := collectExpiringEntries(today)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	subject := fmt.Sprintf("Compliance digest: %d documents need attention", len(entries))
	if err := config.SendMail(recipients, subject, renderDigestHTML(entries)); err != nil {
		return 0, utils.TransientError("send digest mail", err)
	}
	return len(entries), nil
}
