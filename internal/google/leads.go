package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"asterbot/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// LeadsService дописывает контакты пользователей в Google-таблицу.
type LeadsService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewLeadsService создает клиент по JSON-ключу сервисного аккаунта.
func NewLeadsService(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*LeadsService, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return NewLeadsServiceWith(srv, spreadsheetID, sheetName), nil
}

// NewLeadsServiceWith оборачивает готовый клиент Sheets API.
func NewLeadsServiceWith(srv *sheets.Service, spreadsheetID, sheetName string) *LeadsService {
	if sheetName == "" {
		sheetName = "Leads"
	}
	return &LeadsService{service: srv, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// TestConnection проверяет доступ к таблице.
func (s *LeadsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// AppendLead добавляет строку с контактом в конец листа.
func (s *LeadsService) AppendLead(ctx context.Context, lead *models.Lead) error {
	if lead == nil {
		return errors.New("lead is nil")
	}

	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{lead.Row()},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.sheetName+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append lead %d: %w", lead.UserID, err)
	}
	return nil
}

// ServiceAccountEmail возвращает email сервисного аккаунта, которому нужно выдать доступ к таблице.
func ServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}
