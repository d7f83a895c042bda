package service

import (
	"github.com/tieubaoca/vapi-kb/types"
	"github.com/tieubaoca/vapi-kb/utils"
)

type MapperConfig struct {
	TitlePrefix string
	NamePrefix  string
	DocType     string
	Source      string
}

// Mapper converts elements into store records. It holds no state besides
// its configuration, so ToRecord is safe to call repeatedly.
type Mapper struct {
	cfg MapperConfig
}

func NewMapper(cfg MapperConfig) Mapper {
	if cfg.DocType == "" {
		cfg.DocType = "webpage"
	}
	if cfg.NamePrefix == "" {
		cfg.NamePrefix = "page"
	}
	return Mapper{cfg: cfg}
}

func (m Mapper) ToRecord(el types.Element) types.Record {
	title := el.SourceTitle
	if m.cfg.TitlePrefix != "" {
		title = m.cfg.TitlePrefix + " - " + el.SourceTitle
	}

	docName := m.cfg.NamePrefix + "_" + utils.Hash(el.SourceURL)
	if el.ElementID != "" {
		docName += "_" + el.ElementID
	}

	chunkID := el.ElementID
	if chunkID == "" {
		chunkID = utils.Hash(el.Text)
	}

	elType := el.Type
	if elType == "" {
		elType = "text"
	}

	return types.Record{
		Title:      title,
		Text:       el.Text,
		DocName:    docName,
		DocType:    m.cfg.DocType,
		DocLink:    el.SourceURL,
		ChunkID:    chunkID,
		ChunkIndex: el.Index,
		Type:       elType,
		Source:     m.cfg.Source,
	}
}

// ToRecords maps every element in order.
func (m Mapper) ToRecords(elements []types.Element) []types.Record {
	records := make([]types.Record, 0, len(elements))
	for _, el := range elements {
		records = append(records, m.ToRecord(el))
	}
	return records
}
