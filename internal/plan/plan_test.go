package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JulianCode-PC/oa-docket/constants"
	"github.com/JulianCode-PC/oa-docket/internal/entity"
)

func mailed() *entity.Date { return entity.MustDate(2024, time.January, 15).Ptr() }

func TestRecommend_NotOA(t *testing.T) {
	r := Recommend(false, constants.OATypeUnknown, nil)
	assert.Equal(t, constants.PathNeedMoreInfo, r.Path)
	assert.Equal(t, []string{"Confirm document type manually (system confidence low)."}, r.ActionItems)
	assert.Equal(t, []string{"Original PDF", "Any cover letter / transmittal metadata"}, r.RequiredInputs)
	assert.Equal(t, RiskNotOA, r.RiskNote)
}

func TestRecommend_NonFinal(t *testing.T) {
	r := Recommend(true, constants.OATypeNonFinal, mailed())
	assert.Equal(t, constants.PathAmend, r.Path)
	require.Len(t, r.ActionItems, 4)
	assert.Equal(t, "Confirm mailing/notification date and response deadline.", r.ActionItems[0])
	assert.Equal(t, actionDraftOptions, r.ActionItems[1])
	assert.Equal(t, "Collect cited references and compare against specification/claims.", r.ActionItems[3])
	assert.Len(t, r.RequiredInputs, 4)
	assert.Equal(t, RiskNonFinal, r.RiskNote)
}

func TestRecommend_Final(t *testing.T) {
	r := Recommend(true, constants.OATypeFinal, mailed())
	assert.Equal(t, constants.PathNeedMoreInfo, r.Path)
	assert.Equal(t, actionFinalChoice, r.ActionItems[1])
	assert.Equal(t, RiskFinal, r.RiskNote)
}

func TestRecommend_UnknownSubtypeAmends(t *testing.T) {
	r := Recommend(true, constants.OATypeUnknown, mailed())
	assert.Equal(t, constants.PathAmend, r.Path)
}

func TestRecommend_MissingMailingDate(t *testing.T) {
	r := Recommend(true, constants.OATypeFinal, nil)
	assert.Equal(t, constants.PathNeedMoreInfo, r.Path)
	assert.Equal(t, RiskNoMailingDate, r.RiskNote)
}

func TestRecommend_DoesNotShareSlices(t *testing.T) {
	a := Recommend(true, constants.OATypeFinal, mailed())
	a.ActionItems[0] = "mutated"
	a.RequiredInputs[0] = "mutated"
	b := Recommend(true, constants.OATypeNonFinal, mailed())
	assert.NotEqual(t, "mutated", b.ActionItems[0])
	assert.NotEqual(t, "mutated", b.RequiredInputs[0])
}

func TestAnnotateBasis(t *testing.T) {
	r := Recommend(true, constants.OATypeNonFinal, nil)
	r.AnnotateBasis(true, constants.BasisReceivedAt)
	assert.Equal(t, RiskNoMailingDate+" (Due date computed using received_at as fallback.)", r.RiskNote)

	r = Recommend(true, constants.OATypeNonFinal, mailed())
	r.AnnotateBasis(true, constants.BasisMailingDate)
	assert.Equal(t, RiskNonFinal, r.RiskNote)

	r = Recommend(false, constants.OATypeUnknown, nil)
	r.AnnotateBasis(false, constants.BasisUnknown)
	assert.Equal(t, RiskNotOA, r.RiskNote)
}

func TestAnnotateOverride(t *testing.T) {
	r := Recommend(true, constants.OATypeNonFinal, mailed())
	r.AnnotateOverride(true)
	assert.Equal(t, RiskNonFinal+OverrideNote, r.RiskNote)

	r = Recommend(true, constants.OATypeNonFinal, mailed())
	r.AnnotateOverride(false)
	assert.Equal(t, RiskNonFinal, r.RiskNote)
}
