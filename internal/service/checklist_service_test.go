package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valiflooz/chaouch-capital/internal/models"
	"github.com/valiflooz/chaouch-capital/internal/xe"
)

func TestValidateGroup(t *testing.T) {
	assert.NoError(t, validateGroup(models.ChecklistGroupPreMarket))
	assert.NoError(t, validateGroup(models.ChecklistGroupExecution))
	assert.ErrorIs(t, validateGroup("unknown"), xe.ErrInvalidParams)
	assert.ErrorIs(t, validateGroup(""), xe.ErrInvalidParams)
}

func TestDefaultChecklistItems(t *testing.T) {
	// 两个分组都有默认内容
	assert.NotEmpty(t, defaultChecklistItems[models.ChecklistGroupPreMarket])
	assert.NotEmpty(t, defaultChecklistItems[models.ChecklistGroupExecution])
}
