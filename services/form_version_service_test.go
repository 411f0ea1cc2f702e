package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"formulier.link/database"
	"formulier.link/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("veritabanı havuzu alınamadı: %v", err)
	}
	// :memory: bağlantı başına ayrı veritabanı oluşturur
	sqlDB.SetMaxOpenConns(1)

	if err := database.RunMigrationsInOrder(db); err != nil {
		t.Fatalf("migrasyonlar çalıştırılamadı: %v", err)
	}
	return db
}

func createTestDefinition(t *testing.T, db *gorm.DB, slug, config string) *models.FormDefinition {
	t.Helper()
	definition := models.FormDefinition{
		UUID:          uuid.New(),
		Slug:          slug,
		Name:          "Definition " + slug,
		Configuration: datatypes.JSON([]byte(config)),
	}
	if err := db.Create(&definition).Error; err != nil {
		t.Fatalf("form tanımı oluşturulamadı: %v", err)
	}
	return &definition
}

func createTestForm(t *testing.T, db *gorm.DB, slug string, definition *models.FormDefinition) *models.Form {
	t.Helper()
	form := models.Form{
		UUID:          uuid.New(),
		Slug:          slug,
		Name:          "Test Form 1",
		CreatorUserID: 1,
		IsEnabled:     true,
	}
	if definition != nil {
		form.Steps = []models.FormStep{
			{UUID: uuid.New(), FormDefinitionID: definition.ID, Order: 0},
		}
	}
	if err := db.Create(&form).Error; err != nil {
		t.Fatalf("form oluşturulamadı: %v", err)
	}
	return &form
}

// createTestVersion kontrollü bir export bloğu ve oluşturulma zamanıyla
// sürüm kaydı ekler.
func createTestVersion(t *testing.T, db *gorm.DB, form *models.Form, blob ExportBlob, createdAt time.Time) *models.FormVersion {
	t.Helper()
	blobBytes, err := json.Marshal(blob)
	if err != nil {
		t.Fatalf("blob serialize edilemedi: %v", err)
	}
	version := models.FormVersion{
		UUID:       uuid.New(),
		FormID:     form.ID,
		ExportBlob: datatypes.JSON(blobBytes),
	}
	version.CreatedAt = createdAt
	if err := db.Create(&version).Error; err != nil {
		t.Fatalf("sürüm oluşturulamadı: %v", err)
	}
	// gorm autoCreateTime'ı ezmek için açıkça yaz
	if err := db.Model(&version).UpdateColumn("created_at", createdAt).Error; err != nil {
		t.Fatalf("created_at güncellenemedi: %v", err)
	}
	version.CreatedAt = createdAt
	return &version
}

const testConfiguration = `{"components": [{"test": "1", "key": "test"}]}`

func testBlob(form *models.Form) ExportBlob {
	return ExportBlob{
		Form: ExportedForm{
			UUID:         form.UUID,
			Slug:         "blob-slug",
			Name:         "Test Form 1",
			InternalName: "Test Form Internal 1",
		},
		Steps: []ExportedStep{
			{
				UUID:  uuid.New(),
				Order: 0,
				FormDefinition: ExportedDefinition{
					UUID:          uuid.New(),
					Slug:          "test-definition-1",
					Name:          "Definition 1",
					Configuration: json.RawMessage(testConfiguration),
				},
			},
		},
	}
}

func countRows[T any](t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var entity T
	var count int64
	if err := db.Model(&entity).Count(&count).Error; err != nil {
		t.Fatalf("satır sayısı alınamadı: %v", err)
	}
	return count
}

func TestRestoreOldVersionAppliesBlobState(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	liveDefinition := createTestDefinition(t, db, "live-definition", `{"components": []}`)
	form := createTestForm(t, db, "live-slug", liveDefinition)

	// Form sürüm alındıktan sonra değişmiş gibi davran
	blob := testBlob(form)
	sourceCreatedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	version := createTestVersion(t, db, form, blob, sourceCreatedAt)

	if err := db.Model(form).Updates(map[string]any{"name": "Changed Name", "internal_name": "Changed"}).Error; err != nil {
		t.Fatalf("form güncellenemedi: %v", err)
	}

	service := NewFormVersionServiceWithDB(db)
	if err := service.RestoreOldVersion(ctx, 1, form.ID, version.UUID); err != nil {
		t.Fatalf("RestoreOldVersion hata döndürdü: %v", err)
	}

	var restored models.Form
	if err := db.Preload("Steps.FormDefinition").First(&restored, form.ID).Error; err != nil {
		t.Fatalf("form okunamadı: %v", err)
	}

	if restored.Name != "Test Form 1" {
		t.Errorf("form adı geri yüklenmedi: %q", restored.Name)
	}
	if restored.InternalName != "Test Form Internal 1" {
		t.Errorf("internal_name geri yüklenmedi: %q", restored.InternalName)
	}
	// Canlı slug korunur, bloktaki slug uygulanmaz
	if restored.Slug != "live-slug" {
		t.Errorf("canlı slug korunmadı: %q", restored.Slug)
	}

	if len(restored.Steps) != 1 {
		t.Fatalf("adım sayısı 1 olmalıydı: %d", len(restored.Steps))
	}
	stepDefinition := restored.Steps[0].FormDefinition
	if stepDefinition.Slug != "test-definition-1" {
		t.Errorf("adım tanımının slug'ı beklenenden farklı: %q", stepDefinition.Slug)
	}
	// Yeni oluşturulan tanım bloktaki uuid'yi almaz
	if stepDefinition.UUID == blob.Steps[0].FormDefinition.UUID {
		t.Error("yeni tanım blok uuid'sini yeniden kullanmamalı")
	}
}

func TestRestoreCreatesNewVersionWithDescription(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	form := createTestForm(t, db, "live-slug", createTestDefinition(t, db, "live-definition", `{"components": []}`))
	sourceCreatedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	version := createTestVersion(t, db, form, testBlob(form), sourceCreatedAt)

	service := NewFormVersionServiceWithDB(db)
	if err := service.RestoreOldVersion(ctx, 1, form.ID, version.UUID); err != nil {
		t.Fatalf("RestoreOldVersion hata döndürdü: %v", err)
	}

	var versions []models.FormVersion
	if err := db.Where("form_id = ?", form.ID).Order("id ASC").Find(&versions).Error; err != nil {
		t.Fatalf("sürümler okunamadı: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("geri yükleme yeni bir sürüm eklemeliydi: %d", len(versions))
	}

	want := fmt.Sprintf("Restored form version 1 (from %s).", sourceCreatedAt.Format(time.RFC3339))
	if versions[1].Description != want {
		t.Errorf("açıklama yanlış:\n got: %q\nwant: %q", versions[1].Description, want)
	}
}

func TestRestoreOrdinalCountsVersionsCreatedBeforeSource(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	form := createTestForm(t, db, "live-slug", createTestDefinition(t, db, "live-definition", `{"components": []}`))
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	second := time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)
	createTestVersion(t, db, form, testBlob(form), first)
	source := createTestVersion(t, db, form, testBlob(form), second)

	service := NewFormVersionServiceWithDB(db)
	if err := service.RestoreOldVersion(ctx, 1, form.ID, source.UUID); err != nil {
		t.Fatalf("RestoreOldVersion hata döndürdü: %v", err)
	}

	var latest models.FormVersion
	if err := db.Where("form_id = ?", form.ID).Order("id DESC").First(&latest).Error; err != nil {
		t.Fatalf("son sürüm okunamadı: %v", err)
	}
	if !strings.HasPrefix(latest.Description, "Restored form version 2 ") {
		t.Errorf("sıra numarası 2 olmalıydı: %q", latest.Description)
	}
}

func TestRestoreReusesDefinitionWithEqualConfiguration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// Aynı slug, yapısal olarak aynı içerik (anahtar sırası farklı)
	existing := createTestDefinition(t, db, "test-definition-1", `{"components": [{"key": "test", "test": "1"}]}`)
	form := createTestForm(t, db, "live-slug", createTestDefinition(t, db, "live-definition", `{"components": []}`))
	version := createTestVersion(t, db, form, testBlob(form), time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	definitionsBefore := countRows[models.FormDefinition](t, db)

	service := NewFormVersionServiceWithDB(db)
	if err := service.RestoreOldVersion(ctx, 1, form.ID, version.UUID); err != nil {
		t.Fatalf("RestoreOldVersion hata döndürdü: %v", err)
	}

	if after := countRows[models.FormDefinition](t, db); after != definitionsBefore {
		t.Errorf("eşit içerikli tanım yeniden kullanılmalıydı: önce %d, sonra %d", definitionsBefore, after)
	}

	var step models.FormStep
	if err := db.Where("form_id = ?", form.ID).First(&step).Error; err != nil {
		t.Fatalf("adım okunamadı: %v", err)
	}
	if step.FormDefinitionID != existing.ID {
		t.Errorf("adım mevcut tanıma bağlanmalıydı: %d != %d", step.FormDefinitionID, existing.ID)
	}
}

func TestRestoreDeduplicatesSlugOnConflict(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// Aynı slug, farklı içerik: slug'a sayı eklenir
	createTestDefinition(t, db, "test-definition-1", `{"components": [{"key": "other", "type": "textfield"}]}`)
	form := createTestForm(t, db, "live-slug", createTestDefinition(t, db, "live-definition", `{"components": []}`))
	version := createTestVersion(t, db, form, testBlob(form), time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	service := NewFormVersionServiceWithDB(db)
	if err := service.RestoreOldVersion(ctx, 1, form.ID, version.UUID); err != nil {
		t.Fatalf("RestoreOldVersion hata döndürdü: %v", err)
	}

	var step models.FormStep
	if err := db.Preload("FormDefinition").Where("form_id = ?", form.ID).First(&step).Error; err != nil {
		t.Fatalf("adım okunamadı: %v", err)
	}
	if step.FormDefinition.Slug != "test-definition-1-2" {
		t.Errorf("çakışan slug numaralanmalıydı: %q", step.FormDefinition.Slug)
	}

	// Mevcut kayıt aynen yerinde kalır
	var untouched models.FormDefinition
	if err := db.Where("slug = ?", "test-definition-1").First(&untouched).Error; err != nil {
		t.Fatalf("mevcut tanım okunamadı: %v", err)
	}
	if string(untouched.Configuration) != `{"components": [{"key": "other", "type": "textfield"}]}` {
		t.Errorf("mevcut tanımın içeriği değişmemeliydi: %s", untouched.Configuration)
	}
}

func TestRestoreNeverReusesBlobDefinitionUUID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	form := createTestForm(t, db, "live-slug", createTestDefinition(t, db, "live-definition", `{"components": []}`))
	blob := testBlob(form)
	version := createTestVersion(t, db, form, blob, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	// Bloktaki tanım uuid'si alakasız bir kayıtta zaten kullanılıyor
	collider := models.FormDefinition{
		UUID:          blob.Steps[0].FormDefinition.UUID,
		Slug:          "unrelated-definition",
		Name:          "Unrelated",
		Configuration: datatypes.JSON([]byte(`{"components": [{"key": "x"}]}`)),
	}
	if err := db.Create(&collider).Error; err != nil {
		t.Fatalf("çakışan tanım oluşturulamadı: %v", err)
	}

	service := NewFormVersionServiceWithDB(db)
	if err := service.RestoreOldVersion(ctx, 1, form.ID, version.UUID); err != nil {
		t.Fatalf("uuid çakışması geri yüklemeyi engellememeli: %v", err)
	}

	var step models.FormStep
	if err := db.Preload("FormDefinition").Where("form_id = ?", form.ID).First(&step).Error; err != nil {
		t.Fatalf("adım okunamadı: %v", err)
	}
	if step.FormDefinition.UUID == collider.UUID {
		t.Error("yeni tanım çakışan uuid'yi almamalı")
	}

	var reloadedCollider models.FormDefinition
	if err := db.First(&reloadedCollider, collider.ID).Error; err != nil {
		t.Fatalf("çakışan tanım okunamadı: %v", err)
	}
	if reloadedCollider.Slug != "unrelated-definition" || reloadedCollider.UUID != collider.UUID {
		t.Error("alakasız kayıt değiştirilmemeliydi")
	}
}

func TestRestoreTwiceIsStable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	form := createTestForm(t, db, "live-slug", createTestDefinition(t, db, "live-definition", `{"components": []}`))
	version := createTestVersion(t, db, form, testBlob(form), time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	service := NewFormVersionServiceWithDB(db)
	if err := service.RestoreOldVersion(ctx, 1, form.ID, version.UUID); err != nil {
		t.Fatalf("ilk geri yükleme hata döndürdü: %v", err)
	}
	definitionsAfterFirst := countRows[models.FormDefinition](t, db)

	if err := service.RestoreOldVersion(ctx, 1, form.ID, version.UUID); err != nil {
		t.Fatalf("ikinci geri yükleme hata döndürdü: %v", err)
	}

	if after := countRows[models.FormDefinition](t, db); after != definitionsAfterFirst {
		t.Errorf("ikinci geri yükleme yeni tanım üretmemeliydi: %d != %d", after, definitionsAfterFirst)
	}
	if steps := countRows[models.FormStep](t, db); steps != 1 {
		t.Errorf("adımlar toptan değiştirilmeliydi, %d satır var", steps)
	}
}

func TestRestoreUnknownVersion(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	form := createTestForm(t, db, "live-slug", createTestDefinition(t, db, "live-definition", `{"components": []}`))

	service := NewFormVersionServiceWithDB(db)
	err := service.RestoreOldVersion(ctx, 1, form.ID, uuid.New())
	if err != ErrVersionNotFound {
		t.Errorf("ErrVersionNotFound bekleniyordu: %v", err)
	}
}

func TestRestoreDoesNotLeakPartialStateOnFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	form := createTestForm(t, db, "live-slug", createTestDefinition(t, db, "live-definition", `{"components": []}`))
	version := models.FormVersion{
		UUID:       uuid.New(),
		FormID:     form.ID,
		ExportBlob: datatypes.JSON([]byte(`{bozuk json`)),
	}
	if err := db.Create(&version).Error; err != nil {
		t.Fatalf("sürüm oluşturulamadı: %v", err)
	}

	service := NewFormVersionServiceWithDB(db)
	if err := service.RestoreOldVersion(ctx, 1, form.ID, version.UUID); err != ErrVersionBlobInvalid {
		t.Fatalf("ErrVersionBlobInvalid bekleniyordu: %v", err)
	}

	// Adımlar silinmemiş olmalı
	if steps := countRows[models.FormStep](t, db); steps != 1 {
		t.Errorf("başarısız geri yükleme adımları değiştirmemeliydi: %d satır", steps)
	}
}

func TestCreateForVersionDescriptions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	form := createTestForm(t, db, "live-slug", createTestDefinition(t, db, "live-definition", `{"components": []}`))

	var reloaded models.Form
	if err := db.Preload("Steps.FormDefinition").First(&reloaded, form.ID).Error; err != nil {
		t.Fatalf("form okunamadı: %v", err)
	}

	service := NewFormVersionServiceWithDB(db)
	for i, want := range []string{"Version 1", "Version 2"} {
		version, err := service.CreateForVersion(ctx, 1, &reloaded)
		if err != nil {
			t.Fatalf("CreateForVersion %d hata döndürdü: %v", i+1, err)
		}
		if version.Description != want {
			t.Errorf("açıklama yanlış: got %q, want %q", version.Description, want)
		}
	}
}

func TestCreateForVersionBlobRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	definition := createTestDefinition(t, db, "step-definition", testConfiguration)
	form := createTestForm(t, db, "round-trip", definition)

	var reloaded models.Form
	if err := db.Preload("Steps.FormDefinition").First(&reloaded, form.ID).Error; err != nil {
		t.Fatalf("form okunamadı: %v", err)
	}

	service := NewFormVersionServiceWithDB(db)
	version, err := service.CreateForVersion(ctx, 1, &reloaded)
	if err != nil {
		t.Fatalf("CreateForVersion hata döndürdü: %v", err)
	}

	var blob ExportBlob
	if err := json.Unmarshal(version.ExportBlob, &blob); err != nil {
		t.Fatalf("blob çözülemedi: %v", err)
	}
	if blob.Form.Slug != "round-trip" || blob.Form.Name != "Test Form 1" {
		t.Errorf("form skalerleri bloğa yazılmadı: %+v", blob.Form)
	}
	if len(blob.Steps) != 1 || blob.Steps[0].FormDefinition.Slug != "step-definition" {
		t.Fatalf("adımlar bloğa yazılmadı: %+v", blob.Steps)
	}
	if !jsonStructurallyEqual(blob.Steps[0].FormDefinition.Configuration, json.RawMessage(testConfiguration)) {
		t.Error("tanım içeriği bloğa aynen yazılmalıydı")
	}
}
