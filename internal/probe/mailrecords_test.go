package probe

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/osint-enrich/internal/model"
)

func TestMailProbe_ClassifiesTXT(t *testing.T) {
	r := &fakeResolver{
		mx: []*net.MX{{Host: "mx.good-domain.test.", Pref: 10}},
		txt: []string{
			"v=spf1 include:_spf.google.com ~all",
			"_dmarc.good-domain.test v=DMARC1; p=reject",
			"v=DKIM1; k=rsa; p=MIGf...",
			"google-site-verification=abc123",
		},
	}
	p := NewMailProbe(r)

	rec := p.Lookup(context.Background(), "good-domain.test")
	assert.True(t, rec.Outcome.OK())
	assert.Equal(t, []string{"mx.good-domain.test."}, rec.MX)
	assert.Len(t, rec.SPF, 1)
	assert.Len(t, rec.DMARC, 1)
	assert.Len(t, rec.DKIM, 1)
}

func TestMailProbe_RecordMatchingSeveralClasses(t *testing.T) {
	r := &fakeResolver{
		txt: []string{"v=spf1 redirect=_dmarc.shared.test"},
	}
	p := NewMailProbe(r)

	rec := p.Lookup(context.Background(), "shared.test")
	assert.Len(t, rec.SPF, 1)
	assert.Len(t, rec.DMARC, 1)
	assert.Empty(t, rec.DKIM)
}

func TestMailProbe_SuccessWithoutAuxRecords(t *testing.T) {
	// Resolution succeeding is what counts; missing SPF/DMARC/DKIM is fine.
	r := &fakeResolver{
		mx:  []*net.MX{{Host: "mx.plain.test.", Pref: 10}},
		txt: []string{"unrelated verification token"},
	}
	p := NewMailProbe(r)

	rec := p.Lookup(context.Background(), "plain.test")
	assert.True(t, rec.Outcome.OK())
	assert.Empty(t, rec.SPF)
	assert.Empty(t, rec.DMARC)
	assert.Empty(t, rec.DKIM)
}

func TestMailProbe_PartialResolution(t *testing.T) {
	r := &fakeResolver{
		mxErr: errors.New("no MX"),
		txt:   []string{"v=spf1 -all"},
	}
	p := NewMailProbe(r)

	rec := p.Lookup(context.Background(), "txt-only.test")
	assert.True(t, rec.Outcome.OK())
	assert.Empty(t, rec.MX)
	assert.Len(t, rec.SPF, 1)
}

func TestMailProbe_NoRecords(t *testing.T) {
	r := &fakeResolver{
		mxErr:  errors.New("NXDOMAIN"),
		txtErr: errors.New("NXDOMAIN"),
	}
	p := NewMailProbe(r)

	rec := p.Lookup(context.Background(), "nonexistent.test")
	assert.Equal(t, model.OutcomeUnavailable, rec.Outcome.Status)
	assert.Contains(t, rec.Outcome.Detail, "no records")
}
