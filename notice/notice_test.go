package notice_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrowderSoup/taskboard/notice"
)

func TestTranslate_English(t *testing.T) {
	require.NoError(t, notice.InitTranslator(notice.LanguageEn))

	assert.Equal(t, "No tasks found", notice.Translate(notice.MsgNoTasks, nil))
	assert.Equal(t, "You don't have permission", notice.Translate(notice.MsgNoPermission, nil))
	assert.Equal(t, "Task 7 status updated to completed",
		notice.Translate(notice.MsgStatusUpdated, map[string]any{"TaskID": 7, "Status": "completed"}))
}

func TestTranslate_FrenchAndFallback(t *testing.T) {
	require.NoError(t, notice.InitTranslator(notice.LanguageFr))
	t.Cleanup(func() { _ = notice.InitTranslator(notice.LanguageEn) })

	assert.Equal(t, "Aucune tâche trouvée", notice.Translate(notice.MsgNoTasks, nil))
	assert.Equal(t, "missingKey", notice.Translate("missingKey", nil))
}

func TestNew(t *testing.T) {
	n := notice.New(notice.LevelInfo, notice.MsgNoProject, nil)
	assert.Equal(t, notice.Notice{Level: notice.LevelInfo, Message: "No project selected."}, n)
}

func TestMultiAndRecorder(t *testing.T) {
	var a, b notice.Recorder
	var fromFunc []notice.Notice
	m := notice.Multi{&a, nil, &b, notice.Func(func(n notice.Notice) { fromFunc = append(fromFunc, n) })}

	m.Notify(notice.Notice{Level: notice.LevelWarning, Message: "careful"})
	m.Notify(notice.Notice{Level: notice.LevelError, Message: "broken"})

	assert.Len(t, a.Notices(), 2)
	assert.Equal(t, a.Notices(), b.Notices())
	assert.Len(t, fromFunc, 2)
	assert.Equal(t, 1, a.Count(notice.LevelWarning))
	assert.Equal(t, 0, a.Count(notice.LevelSuccess))

	a.Reset()
	assert.Empty(t, a.Notices())
}

func TestRecorder_Concurrent(t *testing.T) {
	var r notice.Recorder
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Notify(notice.Notice{Level: notice.LevelInfo, Message: "x"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, r.Count(notice.LevelInfo))
}
