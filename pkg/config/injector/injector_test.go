package injector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/raywall/update-emulator/pkg/config/injector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSSM struct {
	values map[string]string
}

func (m *mockSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	v, ok := m.values[*params.Name]
	if !ok {
		return nil, errors.New("ParameterNotFound")
	}
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: aws.String(v)}}, nil
}

type mockSecrets struct {
	values map[string]string
}

func (m *mockSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	v, ok := m.values[*params.SecretId]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(v)}, nil
}

type nested struct {
	URL string
}

type testConfig struct {
	APKPath     string
	DownloadURL string
	Addr        string
	Port        int
	Tags        []string
	Nested      *nested
	private     string
}

func env(vars map[string]string) injector.Option {
	return injector.WithLookupEnv(func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	})
}

func TestInjector_Inject_Environment(t *testing.T) {
	inj := injector.New(env(map[string]string{"BUILD_DIR": "/builds", "HOST": "10.0.0.2"}))

	target := &testConfig{
		APKPath:     "${env.BUILD_DIR}/app-release.apk",
		DownloadURL: "http://${env.HOST}:8000/apk",
		Port:        8000,
		Tags:        []string{"host:${env.HOST}"},
		Nested:      &nested{URL: "http://${env.HOST}/notes"},
		private:     "${env.HOST}",
	}

	require.NoError(t, inj.Inject(context.Background(), target))

	assert.Equal(t, "/builds/app-release.apk", target.APKPath)
	assert.Equal(t, "http://10.0.0.2:8000/apk", target.DownloadURL)
	assert.Equal(t, []string{"host:10.0.0.2"}, target.Tags)
	assert.Equal(t, "http://10.0.0.2/notes", target.Nested.URL)
	assert.Equal(t, "${env.HOST}", target.private)
	assert.Equal(t, 8000, target.Port)
}

func TestInjector_Inject_MissingEnvBecomesEmpty(t *testing.T) {
	inj := injector.New(env(nil))
	target := &testConfig{APKPath: "${env.NOPE}"}

	require.NoError(t, inj.Inject(context.Background(), target))
	assert.Equal(t, "", target.APKPath)
}

func TestInjector_Inject_AWS(t *testing.T) {
	inj := injector.New(
		env(nil),
		injector.WithSSMClient(&mockSSM{values: map[string]string{"/emulator/apk": "/data/app.apk"}}),
		injector.WithSecretsClient(&mockSecrets{values: map[string]string{
			"datadog":  `{"addr":"dd-agent:8125"}`,
			"plainkey": "raw-value",
		}}),
	)

	target := &testConfig{
		APKPath:     "${ssm./emulator/apk}",
		Addr:        "${secret.datadog#addr}",
		DownloadURL: "${secret.plainkey}",
	}

	require.NoError(t, inj.Inject(context.Background(), target))
	assert.Equal(t, "/data/app.apk", target.APKPath)
	assert.Equal(t, "dd-agent:8125", target.Addr)
	assert.Equal(t, "raw-value", target.DownloadURL)
}

func TestInjector_Inject_Errors(t *testing.T) {
	inj := injector.New(
		injector.WithSSMClient(&mockSSM{}),
		injector.WithSecretsClient(&mockSecrets{values: map[string]string{"plain": "x"}}),
	)

	t.Run("ssm not found", func(t *testing.T) {
		err := inj.Inject(context.Background(), &testConfig{APKPath: "${ssm./missing}"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APKPath")
	})

	t.Run("secret field on plain secret", func(t *testing.T) {
		err := inj.Inject(context.Background(), &testConfig{Addr: "${secret.plain#addr}"})
		assert.Error(t, err)
	})

	t.Run("not a pointer", func(t *testing.T) {
		assert.Error(t, inj.Inject(context.Background(), testConfig{}))
	})
}
