package history

import (
	"encoding/json"
	"fmt"

	"phishguard/internal/models"
)

func encode(reports []models.Report) ([]byte, error) {
	if reports == nil {
		reports = []models.Report{}
	}
	data, err := json.Marshal(reports)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return data, nil
}

func decode(data []byte) ([]models.Report, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var reports []models.Report
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return reports, nil
}
