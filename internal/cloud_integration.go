package internal

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CloudProvider тип облачного провайдера
type CloudProvider string

const (
	AWS     CloudProvider = "aws"
	Azure   CloudProvider = "azure"
	GCP     CloudProvider = "gcp"
	DigitalOcean CloudProvider = "digitalocean"
	Linode  CloudProvider = "linode"
)

// CloudConfig конфигурация для облачного развертывания
type CloudConfig struct {
	Provider     CloudProvider `json:"provider"`
	Region       string        `json:"region"`
	InstanceType string        `json:"instance_type"`
	
	// Scaling configuration
	MinInstances int `json:"min_instances"`
	MaxInstances int `json:"max_instances"`
	AutoScale    bool `json:"auto_scale"`
	
	// Network configuration
	VPCID        string `json:"vpc_id"`
	SubnetID     string `json:"subnet_id"`
	SecurityGroupID string `json:"security_group_id"`
	
	// Load balancer configuration
	LoadBalancerType string `json:"load_balancer_type"` // ALB, NLB, GCP LB, etc.
	SSLEnabled      bool   `json:"ssl_enabled"`
	DomainName      string `json:"domain_name"`
	
	// Monitoring configuration
	EnableMonitoring bool `json:"enable_monitoring"`
	LogLevel        string `json:"log_level"`
	MetricsInterval  time.Duration `json:"metrics_interval"`
	
	// Security configuration
	EnableFirewall bool `json:"enable_firewall"`
	AllowedPorts   []int `json:"allowed_ports"`
	SSHKeyName     string `json:"ssh_key_name"`
}

// CloudDeployment статус развертывания в облаке
type CloudDeployment struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Status       DeploymentStatus       `json:"status"`
	Config       CloudConfig            `json:"config"`
	Instances    []CloudInstance        `json:"instances"`
	LoadBalancer *LoadBalancer          `json:"load_balancer,omitempty"`
	Monitoring   *MonitoringSetup       `json:"monitoring,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Details      map[string]interface{} `json:"details"`
}

// DeploymentStatus статус развертывания
type DeploymentStatus string

const (
	DeploymentPending    DeploymentStatus = "pending"
	DeploymentCreating   DeploymentStatus = "creating"
	DeploymentRunning    DeploymentStatus = "running"
	DeploymentScaling    DeploymentStatus = "scaling"
	DeploymentStopping   DeploymentStatus = "stopping"
	DeploymentStopped    DeploymentStatus = "stopped"
	DeploymentError      DeploymentStatus = "error"
)

// CloudInstance облачный инстанс
type CloudInstance struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	PublicIP     string    `json:"public_ip"`
	PrivateIP    string    `json:"private_ip"`
	InstanceType string    `json:"instance_type"`
	Region       string    `json:"region"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoadBalancer конфигурация балансировщика нагрузки
type LoadBalancer struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	DNSName      string `json:"dns_name"`
	Port         int    `json:"port"`
	HealthCheck  string `json:"health_check"`
	SSLEnabled   bool   `json:"ssl_enabled"`
	Certificate  string `json:"certificate,omitempty"`
}

// MonitoringSetup настройка мониторинга
type MonitoringSetup struct {
	Enabled      bool     `json:"enabled"`
	Provider     string   `json:"provider"` // CloudWatch, Azure Monitor, Stackdriver
	Metrics      []string `json:"metrics"`
	Alerts       []Alert  `json:"alerts"`
	DashboardURL string   `json:"dashboard_url"`
}

// Alert конфигурация алерта
type Alert struct {
	Name        string  `json:"name"`
	Metric      string  `json:"metric"`
	Threshold   float64 `json:"threshold"`
	Operator    string  `json:"operator"` // >, <, >=, <=, ==
	Action      string  `json:"action"`    // email, webhook, scale
	Enabled     bool    `json:"enabled"`
}

// CloudManager менеджер облачных развертываний
type CloudManager struct {
	provider CloudProvider
	config   CloudConfig
	client   interface{} // Cloud provider client
}

// NewCloudManager создает новый менеджер облачных развертываний
func NewCloudManager(provider CloudProvider, config CloudConfig) (*CloudManager, error) {
	cm := &CloudManager{
		provider: provider,
		config:   config,
	}

	// Initialize cloud provider client
	if err := cm.initializeClient(); err != nil {
		return nil, fmt.Errorf("failed to initialize cloud client: %v", err)
	}

	return cm, nil
}

// Deploy развертывает QUIC тестер в облаке
func (cm *CloudManager) Deploy(ctx context.Context, name string) (*CloudDeployment, error) {
	log.Printf("🚀 Deploying QUIC tester to %s cloud...", cm.provider)

	deployment := &CloudDeployment{
		ID:        generateDeploymentID(),
		Name:      name,
		Status:    DeploymentCreating,
		Config:    cm.config,
		CreatedAt: time.Now(),
		Details:   make(map[string]interface{}),
	}

	// Create instances
	instances, err := cm.createInstances(ctx, deployment)
	if err != nil {
		deployment.Status = DeploymentError
		return deployment, fmt.Errorf("failed to create instances: %v", err)
	}
	deployment.Instances = instances

	// Setup load balancer
	if cm.config.LoadBalancerType != "" {
		lb, err := cm.setupLoadBalancer(ctx, deployment)
		if err != nil {
			log.Printf("⚠️  Failed to setup load balancer: %v", err)
		} else {
			deployment.LoadBalancer = lb
		}
	}

	// Setup monitoring
	if cm.config.EnableMonitoring {
		monitoring, err := cm.setupMonitoring(ctx, deployment)
		if err != nil {
			log.Printf("⚠️  Failed to setup monitoring: %v", err)
		} else {
			deployment.Monitoring = monitoring
		}
	}

	deployment.Status = DeploymentRunning
	deployment.UpdatedAt = time.Now()

	log.Printf("✅ Deployment completed: %s", deployment.ID)
	return deployment, nil
}

// Scale масштабирует развертывание
func (cm *CloudManager) Scale(ctx context.Context, deployment *CloudDeployment, targetInstances int) error {
	if !cm.config.AutoScale {
		return fmt.Errorf("auto-scaling is disabled")
	}

	if targetInstances < cm.config.MinInstances || targetInstances > cm.config.MaxInstances {
		return fmt.Errorf("target instances (%d) is outside allowed range (%d-%d)", 
			targetInstances, cm.config.MinInstances, cm.config.MaxInstances)
	}

	log.Printf("📈 Scaling deployment to %d instances...", targetInstances)

	deployment.Status = DeploymentScaling

	// Scale up or down
	currentInstances := len(deployment.Instances)
	if targetInstances > currentInstances {
		// Scale up
		newInstances, err := cm.createInstances(ctx, deployment)
		if err != nil {
			return fmt.Errorf("failed to scale up: %v", err)
		}
		deployment.Instances = append(deployment.Instances, newInstances...)
	} else if targetInstances < currentInstances {
		// Scale down
		instancesToRemove := currentInstances - targetInstances
		if err := cm.removeInstances(ctx, deployment, instancesToRemove); err != nil {
			return fmt.Errorf("failed to scale down: %v", err)
		}
	}

	deployment.Status = DeploymentRunning
	deployment.UpdatedAt = time.Now()

	log.Printf("✅ Scaling completed: %d instances", len(deployment.Instances))
	return nil
}

// Stop останавливает развертывание
func (cm *CloudManager) Stop(ctx context.Context, deployment *CloudDeployment) error {
	log.Printf("🛑 Stopping deployment: %s", deployment.ID)

	deployment.Status = DeploymentStopping

	// Stop all instances
	for _, instance := range deployment.Instances {
		if err := cm.stopInstance(ctx, instance); err != nil {
			log.Printf("⚠️  Failed to stop instance %s: %v", instance.ID, err)
		}
	}

	// Cleanup load balancer
	if deployment.LoadBalancer != nil {
		if err := cm.cleanupLoadBalancer(ctx, deployment.LoadBalancer); err != nil {
			log.Printf("⚠️  Failed to cleanup load balancer: %v", err)
		}
	}

	deployment.Status = DeploymentStopped
	deployment.UpdatedAt = time.Now()

	log.Printf("✅ Deployment stopped: %s", deployment.ID)
	return nil
}

// GetStatus возвращает статус развертывания
func (cm *CloudManager) GetStatus(ctx context.Context, deployment *CloudDeployment) (*CloudDeployment, error) {
	// Update instance statuses
	for i, instance := range deployment.Instances {
		status, err := cm.getInstanceStatus(ctx, instance)
		if err != nil {
			log.Printf("⚠️  Failed to get status for instance %s: %v", instance.ID, err)
		} else {
			deployment.Instances[i].Status = status
		}
	}

	// Update load balancer status
	if deployment.LoadBalancer != nil {
		lbStatus, err := cm.getLoadBalancerStatus(ctx, deployment.LoadBalancer)
		if err != nil {
			log.Printf("⚠️  Failed to get load balancer status: %v", err)
		} else {
			deployment.LoadBalancer.HealthCheck = lbStatus
		}
	}

	deployment.UpdatedAt = time.Now()
	return deployment, nil
}

// Cloud provider specific implementations

func (cm *CloudManager) initializeClient() error {
	switch cm.provider {
	case AWS:
		return cm.initializeAWSClient()
	case Azure:
		return cm.initializeAzureClient()
	case GCP:
		return cm.initializeGCPClient()
	case DigitalOcean:
		return cm.initializeDigitalOceanClient()
	case Linode:
		return cm.initializeLinodeClient()
	default:
		return fmt.Errorf("unsupported cloud provider: %s", cm.provider)
	}
}

func (cm *CloudManager) initializeAWSClient() error {
	// Initialize AWS SDK client
	log.Printf("🔧 Initializing AWS client...")
	// Implementation would use AWS SDK
	return nil
}

func (cm *CloudManager) initializeAzureClient() error {
	// Initialize Azure SDK client
	log.Printf("🔧 Initializing Azure client...")
	// Implementation would use Azure SDK
	return nil
}

func (cm *CloudManager) initializeGCPClient() error {
	// Initialize GCP SDK client
	log.Printf("🔧 Initializing GCP client...")
	// Implementation would use GCP SDK
	return nil
}

func (cm *CloudManager) initializeDigitalOceanClient() error {
	// Initialize DigitalOcean client
	log.Printf("🔧 Initializing DigitalOcean client...")
	// Implementation would use DigitalOcean API
	return nil
}

func (cm *CloudManager) initializeLinodeClient() error {
	// Initialize Linode client
	log.Printf("🔧 Initializing Linode client...")
	// Implementation would use Linode API
	return nil
}

func (cm *CloudManager) createInstances(ctx context.Context, deployment *CloudDeployment) ([]CloudInstance, error) {
	switch cm.provider {
	case AWS:
		return cm.createAWSInstances(ctx, deployment)
	case Azure:
		return cm.createAzureInstances(ctx, deployment)
	case GCP:
		return cm.createGCPInstances(ctx, deployment)
	case DigitalOcean:
		return cm.createDigitalOceanInstances(ctx, deployment)
	case Linode:
		return cm.createLinodeInstances(ctx, deployment)
	default:
		return nil, fmt.Errorf("unsupported cloud provider: %s", cm.provider)
	}
}

func (cm *CloudManager) createAWSInstances(ctx context.Context, deployment *CloudDeployment) ([]CloudInstance, error) {
	log.Printf("🏗️  Creating AWS instances...")
	// Implementation would use AWS SDK to create EC2 instances
	return []CloudInstance{}, nil
}

func (cm *CloudManager) createAzureInstances(ctx context.Context, deployment *CloudDeployment) ([]CloudInstance, error) {
	log.Printf("🏗️  Creating Azure instances...")
	// Implementation would use Azure SDK to create VMs
	return []CloudInstance{}, nil
}

func (cm *CloudManager) createGCPInstances(ctx context.Context, deployment *CloudDeployment) ([]CloudInstance, error) {
	log.Printf("🏗️  Creating GCP instances...")
	// Implementation would use GCP SDK to create Compute Engine instances
	return []CloudInstance{}, nil
}

func (cm *CloudManager) createDigitalOceanInstances(ctx context.Context, deployment *CloudDeployment) ([]CloudInstance, error) {
	log.Printf("🏗️  Creating DigitalOcean instances...")
	// Implementation would use DigitalOcean API to create droplets
	return []CloudInstance{}, nil
}

func (cm *CloudManager) createLinodeInstances(ctx context.Context, deployment *CloudDeployment) ([]CloudInstance, error) {
	log.Printf("🏗️  Creating Linode instances...")
	// Implementation would use Linode API to create instances
	return []CloudInstance{}, nil
}

func (cm *CloudManager) setupLoadBalancer(ctx context.Context, deployment *CloudDeployment) (*LoadBalancer, error) {
	log.Printf("⚖️  Setting up load balancer...")
	// Implementation would setup load balancer based on provider
	return &LoadBalancer{
		ID:          "lb-" + deployment.ID,
		Type:        cm.config.LoadBalancerType,
		DNSName:     "quic-tester-" + deployment.ID + ".example.com",
		Port:        443,
		HealthCheck: "/health",
		SSLEnabled:  cm.config.SSLEnabled,
	}, nil
}

func (cm *CloudManager) setupMonitoring(ctx context.Context, deployment *CloudDeployment) (*MonitoringSetup, error) {
	log.Printf("📊 Setting up monitoring...")
	// Implementation would setup monitoring based on provider
	return &MonitoringSetup{
		Enabled:  true,
		Provider: string(cm.provider),
		Metrics:  []string{"cpu", "memory", "network", "quic_connections"},
		Alerts: []Alert{
			{
				Name:      "High CPU Usage",
				Metric:    "cpu_usage",
				Threshold: 80.0,
				Operator:  ">",
				Action:    "scale",
				Enabled:   true,
			},
		},
		DashboardURL: "https://monitoring.example.com/dashboard/" + deployment.ID,
	}, nil
}

func (cm *CloudManager) removeInstances(ctx context.Context, deployment *CloudDeployment, count int) error {
	log.Printf("📉 Removing %d instances...", count)
	// Implementation would remove instances
	return nil
}

func (cm *CloudManager) stopInstance(ctx context.Context, instance CloudInstance) error {
	log.Printf("🛑 Stopping instance: %s", instance.ID)
	// Implementation would stop instance
	return nil
}

func (cm *CloudManager) cleanupLoadBalancer(ctx context.Context, lb *LoadBalancer) error {
	log.Printf("🧹 Cleaning up load balancer: %s", lb.ID)
	// Implementation would cleanup load balancer
	return nil
}

func (cm *CloudManager) getInstanceStatus(ctx context.Context, instance CloudInstance) (string, error) {
	// Implementation would get instance status
	return "running", nil
}

func (cm *CloudManager) getLoadBalancerStatus(ctx context.Context, lb *LoadBalancer) (string, error) {
	// Implementation would get load balancer status
	return "healthy", nil
}

// Helper functions

func generateDeploymentID() string {
	return fmt.Sprintf("quic-%d", time.Now().Unix())
}

// CloudDeploymentManager глобальный менеджер развертываний
type CloudDeploymentManager struct {
	deployments map[string]*CloudDeployment
	managers    map[CloudProvider]*CloudManager
}

// NewCloudDeploymentManager создает новый глобальный менеджер
func NewCloudDeploymentManager() *CloudDeploymentManager {
	return &CloudDeploymentManager{
		deployments: make(map[string]*CloudDeployment),
		managers:    make(map[CloudProvider]*CloudManager),
	}
}

// DeployToCloud развертывает в облаке
func (cdm *CloudDeploymentManager) DeployToCloud(provider CloudProvider, config CloudConfig, name string) (*CloudDeployment, error) {
	manager, exists := cdm.managers[provider]
	if !exists {
		var err error
		manager, err = NewCloudManager(provider, config)
		if err != nil {
			return nil, err
		}
		cdm.managers[provider] = manager
	}

	deployment, err := manager.Deploy(context.Background(), name)
	if err != nil {
		return nil, err
	}

	cdm.deployments[deployment.ID] = deployment
	return deployment, nil
}

// GetDeployment возвращает развертывание по ID
func (cdm *CloudDeploymentManager) GetDeployment(id string) (*CloudDeployment, bool) {
	deployment, exists := cdm.deployments[id]
	return deployment, exists
}

// ListDeployments возвращает список всех развертываний
func (cdm *CloudDeploymentManager) ListDeployments() []*CloudDeployment {
	deployments := make([]*CloudDeployment, 0, len(cdm.deployments))
	for _, deployment := range cdm.deployments {
		deployments = append(deployments, deployment)
	}
	return deployments
}
