package svofps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const curveVOTable = `<?xml version="1.0"?>
<VOTABLE version="1.4">
 <RESOURCE>
  <TABLE>
   <FIELD name="Wavelength" datatype="double" unit="AA"/>
   <FIELD name="Transmission" datatype="double"/>
   <DATA><TABLEDATA>
    <TR><TD>21000</TD><TD>0.91</TD></TR>
   </TABLEDATA></DATA>
  </TABLE>
 </RESOURCE>
</VOTABLE>`

const errorVOTable = `<?xml version="1.0"?>
<VOTABLE version="1.4">
 <RESOURCE type="results">
  <INFO name="QUERY_STATUS" value="ERROR">
    No filter found for requested ID
  </INFO>
 </RESOURCE>
</VOTABLE>`

func TestFetchTransmission(t *testing.T) {
	t.Parallel()

	var gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("ID")
		_, _ = w.Write([]byte(curveVOTable))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)

	table, err := c.FetchTransmission(context.Background(), "Keck/NIRC2.Kp")
	require.NoError(t, err)

	assert.Equal(t, "Keck/NIRC2.Kp", gotQuery)
	assert.Equal(t, 1, table.NumRows())
	assert.Equal(t, []string{"Wavelength", "Transmission"}, table.ColumnNames())
}

func TestFetchIndexQueriesWavelengthRange(t *testing.T) {
	t.Parallel()

	var sawRange bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		sawRange = q.Get("WavelengthEff_min") != "" && q.Get("WavelengthEff_max") != ""
		_, _ = w.Write([]byte(curveVOTable))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)

	_, err := c.FetchIndex(context.Background())
	require.NoError(t, err)
	assert.True(t, sawRange, "index fetch must query the full wavelength range")
}

func TestFetchTransmissionServiceError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// The FPS reports bad IDs inside a 200 response.
		_, _ = w.Write([]byte(errorVOTable))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)

	_, err := c.FetchTransmission(context.Background(), "No/Such.Filter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No filter found")
}

func TestFetchTransmissionHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)

	_, err := c.FetchTransmission(context.Background(), "Keck/NIRC2.Kp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	c := New("", 0)

	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, defaultTimeout, c.http.Timeout)
}
