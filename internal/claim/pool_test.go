package claim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/identity"
	"github.com/vmfab/rutero/internal/model"
	"github.com/vmfab/rutero/internal/testutil"
)

func identityFor(id string) identity.Actor {
	return identity.Actor{ID: id}
}

func seedHojaConEstaciones(t *testing.T, db *gorm.DB, nombre string, centros []string) model.HojaRuta {
	t.Helper()
	hoja := model.HojaRuta{MaquinaID: 1, Nombre: nombre, CantidadPiezas: 5}
	require.NoError(t, db.Create(&hoja).Error)
	for i, centro := range centros {
		est := model.Estacion{
			HojaRutaID:    hoja.ID,
			Operacion:     "Op",
			Orden:         i + 1,
			CentroTrabajo: centro,
			TotalPiezas:   5,
			Estado:        model.EstacionPendiente,
		}
		require.NoError(t, db.Create(&est).Error)
	}
	return hoja
}

func TestListUnclaimed_StationsGroupedAndFiltered(t *testing.T) {
	t.Parallel()

	db := testutil.OpenDB(t)
	e := New(db)
	ctx := context.Background()

	h1 := seedHojaConEstaciones(t, db, "HR-001", []string{"Fresado", "Calidad"})
	h2 := seedHojaConEstaciones(t, db, "HR-002", []string{"Fresado"})

	all, err := e.ListUnclaimed(ctx, KindEstacion, PoolFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Grouped by sheet, ascending orden within each.
	assert.Equal(t, h1.ID, all[0].HojaRutaID)
	assert.Equal(t, 1, all[0].Orden)
	assert.Equal(t, 2, all[1].Orden)
	assert.Equal(t, h2.ID, all[2].HojaRutaID)

	fresado, err := e.ListUnclaimed(ctx, KindEstacion, PoolFilter{CentroTrabajo: "Fresado"})
	require.NoError(t, err)
	assert.Len(t, fresado, 2)

	soloH2, err := e.ListUnclaimed(ctx, KindEstacion, PoolFilter{HojaRutaID: h2.ID})
	require.NoError(t, err)
	require.Len(t, soloH2, 1)
	assert.Equal(t, h2.ID, soloH2[0].HojaRutaID)
}

func TestListUnclaimed_ClaimedItemsLeaveThePool(t *testing.T) {
	t.Parallel()

	db := testutil.OpenDB(t)
	e := New(db)
	ctx := context.Background()

	seedHojaConEstaciones(t, db, "HR-001", []string{"Fresado", "Calidad"})
	pool, err := e.ListUnclaimed(ctx, KindEstacion, PoolFilter{})
	require.NoError(t, err)
	require.Len(t, pool, 2)

	_, err = e.Claim(ctx, KindEstacion, pool[0].ID, actorA)
	require.NoError(t, err)

	pool, err = e.ListUnclaimed(ctx, KindEstacion, PoolFilter{})
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, 2, pool[0].Orden)
}

func TestListUnclaimed_TicketsOldestFirst(t *testing.T) {
	t.Parallel()

	db := testutil.OpenDB(t)
	e := New(db)
	ctx := context.Background()

	first := seedTicket(t, e, "solicitante-x")
	second := seedTicket(t, e, "solicitante-y")

	pool, err := e.ListUnclaimed(ctx, KindTicket, PoolFilter{})
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, first.ID, pool[0].ID)
	assert.Equal(t, second.ID, pool[1].ID)

	soloY, err := e.ListUnclaimed(ctx, KindTicket, PoolFilter{Solicitante: "solicitante-y"})
	require.NoError(t, err)
	require.Len(t, soloY, 1)
	assert.Equal(t, second.ID, soloY[0].ID)
}

func TestGet_AccessRules(t *testing.T) {
	t.Parallel()

	db := testutil.OpenDB(t)
	e := New(db)
	ctx := context.Background()
	ticket := seedTicket(t, e, "solicitante-x")
	solicitante := identityFor("solicitante-x")

	// Unclaimed: anyone may look.
	_, err := e.Get(ctx, KindTicket, ticket.ID, actorB, false)
	require.NoError(t, err)

	_, err = e.Claim(ctx, KindTicket, ticket.ID, actorA)
	require.NoError(t, err)

	// Owner, requester and admin keep access; strangers do not.
	_, err = e.Get(ctx, KindTicket, ticket.ID, actorA, false)
	require.NoError(t, err)
	_, err = e.Get(ctx, KindTicket, ticket.ID, solicitante, false)
	require.NoError(t, err)
	_, err = e.Get(ctx, KindTicket, ticket.ID, admin, false)
	require.NoError(t, err)
	_, err = e.Get(ctx, KindTicket, ticket.ID, actorB, false)
	assert.True(t, fault.HasCode(err, fault.CodeForbidden))
}
