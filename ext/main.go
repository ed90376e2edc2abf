package ext

import (
	"musicdl/ext/suno"
	"musicdl/ext/udio"
	"musicdl/models"
)

var List = []*models.Extractor{
	suno.Extractor,
	udio.Extractor,
}
