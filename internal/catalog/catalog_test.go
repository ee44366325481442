package catalog

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/model"
	"github.com/vmfab/rutero/internal/testutil"
)

func TestStepsForMachineType_OrderWithGaps(t *testing.T) {
	t.Parallel()

	db := testutil.OpenDB(t)
	cat := New(db)

	// Orden carries gaps on purpose; only the relative order matters.
	testutil.SeedTemplate(t, db, "cnc-default", "cnc", [][3]any{
		{20, "Inspect", "QA"},
		{5, "Setup", "Mill"},
		{10, "Cut", "Mill"},
	})

	steps, err := cat.StepsForMachineType(context.Background(), "cnc")
	require.NoError(t, err)
	require.Len(t, steps, 3)

	got := []string{steps[0].Operacion, steps[1].Operacion, steps[2].Operacion}
	if diff := cmp.Diff([]string{"Setup", "Cut", "Inspect"}, got); diff != "" {
		t.Fatalf("step order mismatch (-want +got):\n%s", diff)
	}
}

func TestStepsForMachineType_UnknownTypeIsEmpty(t *testing.T) {
	t.Parallel()

	db := testutil.OpenDB(t)
	cat := New(db)

	steps, err := cat.StepsForMachineType(context.Background(), "laser")
	require.NoError(t, err)
	assert.Empty(t, steps)

	steps, err = cat.StepsForMachineType(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestStepsForProduct(t *testing.T) {
	t.Parallel()

	db := testutil.OpenDB(t)
	cat := New(db)
	ctx := context.Background()

	rows := []model.PasoProceso{
		{Clave: "PZ-778", Orden: 2, Operacion: "Roscado", CentroTrabajo: "Torneado"},
		{Clave: "PZ-778", Orden: 1, Operacion: "Cilindrado", CentroTrabajo: "Torneado"},
		{Clave: "PZ-999", Orden: 1, Operacion: "Otro", CentroTrabajo: "Otro"},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	steps, err := cat.StepsForProduct(ctx, "PZ-778")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "Cilindrado", steps[0].Operacion)
	assert.Equal(t, "Roscado", steps[1].Operacion)

	none, err := cat.StepsForProduct(ctx, "PZ-000")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTemplateCRUD(t *testing.T) {
	t.Parallel()

	db := testutil.OpenDB(t)
	cat := New(db)
	ctx := context.Background()

	row := model.PlantillaEstacion{
		PlantillaNombre: "cnc-default",
		MaquinaTipo:     "cnc",
		Operacion:       "Setup",
		CentroTrabajo:   "Mill",
		Orden:           1,
	}
	require.NoError(t, cat.CreateTemplate(ctx, &row))
	require.NotZero(t, row.ID)

	err := cat.CreateTemplate(ctx, &model.PlantillaEstacion{MaquinaTipo: "cnc"})
	assert.True(t, fault.HasCode(err, fault.CodeInvalidInput))

	row.Operacion = "Setup y fijación"
	require.NoError(t, cat.UpdateTemplate(ctx, &row))

	listed, err := cat.ListTemplates(ctx, "cnc")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Setup y fijación", listed[0].Operacion)

	err = cat.UpdateTemplate(ctx, &model.PlantillaEstacion{ID: 999, MaquinaTipo: "cnc", Operacion: "x"})
	assert.True(t, fault.HasCode(err, fault.CodeNotFound))

	require.NoError(t, cat.DeleteTemplate(ctx, row.ID))
	err = cat.DeleteTemplate(ctx, row.ID)
	assert.True(t, fault.HasCode(err, fault.CodeNotFound))
}

func TestTemplateEditsAreProspective(t *testing.T) {
	t.Parallel()

	db := testutil.OpenDB(t)
	cat := New(db)
	ctx := context.Background()

	testutil.SeedTemplate(t, db, "cnc-default", "cnc", [][3]any{{1, "Setup", "Mill"}})
	before, err := cat.StepsForMachineType(ctx, "cnc")
	require.NoError(t, err)
	require.Len(t, before, 1)

	// A generated station is a snapshot; deleting the template must not touch it.
	hoja := model.HojaRuta{MaquinaID: 1, Nombre: "HR-200", CantidadPiezas: 1}
	require.NoError(t, db.Create(&hoja).Error)
	est := model.Estacion{HojaRutaID: hoja.ID, Operacion: "Setup", Orden: 1, Estado: model.EstacionPendiente}
	require.NoError(t, db.Create(&est).Error)

	var tpl model.PlantillaEstacion
	require.NoError(t, db.First(&tpl, "maquina_tipo = ?", "cnc").Error)
	require.NoError(t, cat.DeleteTemplate(ctx, tpl.ID))

	var still model.Estacion
	require.NoError(t, db.First(&still, est.ID).Error)
	assert.Equal(t, "Setup", still.Operacion)
}
