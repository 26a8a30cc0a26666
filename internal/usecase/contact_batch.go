package usecase

import "contacts-sync-service/internal/domain"

// FormatPhone приводит номер к международному формату добавлением "+".
// Номер не проверяется: считается, что цифры уже содержат код страны и города.
func FormatPhone(raw string) string {
	if raw == "" {
		return ""
	}
	return "+" + raw
}

// BuildContactBatch собирает атомарную запись контакта: имя, почта, телефон,
// отдел и членство в группе поверх базовой записи с ключом синхронизации.
func BuildContactBatch(account domain.Account, groupID string, contact *domain.Contact) *domain.ContactBatch {
	return &domain.ContactBatch{
		Account: account,
		SyncKey: contact.UserName,
		Rows: []domain.DataRow{
			{
				Kind: domain.KindStructuredName,
				Values: map[string]string{
					domain.FieldGivenName:  contact.FirstName,
					domain.FieldFamilyName: contact.LastName,
				},
			},
			dataRow(domain.KindEmail, domain.FieldAddress, contact.Mail),
			dataRow(domain.KindPhone, domain.FieldNumber, FormatPhone(contact.Phone)),
			dataRow(domain.KindOrganization, domain.FieldDepartment, contact.Location),
			dataRow(domain.KindGroupMembership, domain.FieldGroupID, groupID),
		},
	}
}

func dataRow(kind, field, value string) domain.DataRow {
	return domain.DataRow{Kind: kind, Values: map[string]string{field: value}}
}
